// Package aiparse turns free-form Korean text into valid todo
// creation payloads: it sanitizes the user's input, renders the
// parsing prompt and coerces the model's candidates into records that
// satisfy the todo invariants.
package aiparse

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minTextLen   = 2
	maxTextLen   = 500
	maxEmojiRune = 10
)

var (
	ErrTextRequired = errors.New("입력 텍스트가 필요합니다.")
	ErrTextEmpty    = errors.New("입력 텍스트가 비어있습니다.")
	ErrTextTooShort = errors.New("입력 텍스트는 최소 2자 이상이어야 합니다.")
	ErrTooManyEmoji = errors.New("이모지가 너무 많습니다. 텍스트를 중심으로 입력해주세요.")
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	emojiRe      = regexp.MustCompile(`[\x{1F300}-\x{1F9FF}]`)
)

// Preprocess trims and whitespace-collapses raw input and enforces
// the 2..500 character and emoji bounds. The returned text is what
// gets embedded into the prompt.
func Preprocess(text string) (string, error) {
	if text == "" {
		return "", ErrTextRequired
	}

	processed := whitespaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
	n := utf8.RuneCountInString(processed)
	if n == 0 {
		return "", ErrTextEmpty
	}
	if n < minTextLen {
		return "", ErrTextTooShort
	}
	if n > maxTextLen {
		return "", fmt.Errorf("입력 텍스트는 500자 이하여야 합니다. (현재: %d자)", n)
	}
	if len(emojiRe.FindAllString(processed, -1)) > maxEmojiRune {
		return "", ErrTooManyEmoji
	}
	return processed, nil
}
