package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/dmlee/todoflow/internal/models"
	"github.com/dmlee/todoflow/internal/recurrence"
)

type todoServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
	// hasPosition is probed once at startup; legacy databases
	// without the column skip every position read and write.
	hasPosition bool
}

func NewTodoService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
	hasPosition bool,
) TodoService {
	return &todoServiceImpl{
		logger:      logger,
		pgPool:      pgPool,
		hasPosition: hasPosition,
	}
}

func (s *todoServiceImpl) CreateTodo(ctx context.Context, params CreateTodoParams) (*models.Todo, error) {
	if !models.IsValidPriority(params.Priority) {
		return nil, ErrInvalidPriority
	}
	repeatType := params.RepeatType
	if repeatType == "" {
		repeatType = models.RepeatNone
	}
	if !models.IsValidRepeatType(repeatType) {
		return nil, ErrInvalidRepeatType
	}

	now := time.Now()
	todo := &models.Todo{
		UserID:           params.UserID,
		Title:            params.Title,
		Description:      params.Description,
		Priority:         params.Priority,
		Category:         params.Category,
		Completed:        params.Completed,
		DueDate:          params.DueDate,
		RepeatType:       repeatType,
		RepeatInterval:   params.RepeatInterval,
		RepeatDaysOfWeek: params.RepeatDaysOfWeek,
		RepeatEndDate:    params.RepeatEndDate,
		ParentTodoID:     params.ParentTodoID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if todo.RepeatInterval < 1 {
		todo.RepeatInterval = 1
	}
	if todo.RepeatType != models.RepeatNone && todo.RepeatEndDate == nil {
		end := recurrence.DefaultEndDate(now)
		todo.RepeatEndDate = &end
	}

	const insertTodoQuery = `
INSERT INTO todos (user_id,
                   title,
                   description,
                   priority,
                   category,
                   completed,
                   due_date,
                   position,
                   repeat_type,
                   repeat_interval,
                   repeat_days_of_week,
                   repeat_end_date,
                   parent_todo_id,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING id
`
	const insertTodoNoPositionQuery = `
INSERT INTO todos (user_id,
                   title,
                   description,
                   priority,
                   category,
                   completed,
                   due_date,
                   repeat_type,
                   repeat_interval,
                   repeat_days_of_week,
                   repeat_end_date,
                   parent_todo_id,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING id
`
	var err error
	if s.hasPosition {
		todo.Position = s.nextPosition(ctx, todo.UserID, todo.Priority)
		err = s.pgPool.QueryRow(
			ctx,
			insertTodoQuery,
			todo.UserID,
			todo.Title,
			todo.Description,
			todo.Priority,
			todo.Category,
			todo.Completed,
			todo.DueDate,
			todo.Position,
			todo.RepeatType,
			todo.RepeatInterval,
			todo.RepeatDaysOfWeek,
			todo.RepeatEndDate,
			todo.ParentTodoID,
			todo.CreatedAt,
			todo.UpdatedAt,
		).Scan(&todo.ID)
	} else {
		err = s.pgPool.QueryRow(
			ctx,
			insertTodoNoPositionQuery,
			todo.UserID,
			todo.Title,
			todo.Description,
			todo.Priority,
			todo.Category,
			todo.Completed,
			todo.DueDate,
			todo.RepeatType,
			todo.RepeatInterval,
			todo.RepeatDaysOfWeek,
			todo.RepeatEndDate,
			todo.ParentTodoID,
			todo.CreatedAt,
			todo.UpdatedAt,
		).Scan(&todo.ID)
	}
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert todo")
		return nil, err
	}
	s.logger.Debug().
		Str("todo_id", todo.ID).
		Msg("inserted todo")

	if todo.RepeatType != models.RepeatNone {
		s.expandRecurrence(ctx, todo, now)
	}

	s.logger.Info().
		Str("todo_id", todo.ID).
		Str("user_id", todo.UserID).
		Msg("created todo")
	return todo, nil
}

// nextPosition finds the next manual slot within the priority tier.
// Failures fall back to position 1; ordering is not worth failing a
// create over.
func (s *todoServiceImpl) nextPosition(ctx context.Context, userID, priority string) int {
	const selectMaxPositionQuery = `
SELECT COALESCE(MAX(position), 0)
FROM todos
WHERE user_id = $1 AND priority = $2
`
	var maxPosition int
	err := s.pgPool.QueryRow(
		ctx,
		selectMaxPositionQuery,
		userID,
		priority,
	).Scan(&maxPosition)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select max position, defaulting")
		return 1
	}
	return maxPosition + 1
}

// expandRecurrence generates and stores future instances of a
// recurring todo. Best-effort: any failure is logged and swallowed so
// the parent create/update still succeeds.
func (s *todoServiceImpl) expandRecurrence(ctx context.Context, parent *models.Todo, now time.Time) {
	base := now
	if parent.DueDate != nil {
		base = *parent.DueDate
	}

	dueDates := recurrence.Expand(recurrence.Rule{
		Type:       parent.RepeatType,
		Interval:   parent.RepeatInterval,
		DaysOfWeek: parent.RepeatDaysOfWeek,
		EndDate:    parent.RepeatEndDate,
	}, base, now)
	if len(dueDates) == 0 {
		s.logger.Debug().
			Str("todo_id", parent.ID).
			Msg("recurrence rule yields no instances")
		return
	}

	instances := recurrence.Instances(parent, dueDates)

	const insertInstanceQuery = `
INSERT INTO todos (user_id,
                   title,
                   description,
                   priority,
                   category,
                   completed,
                   due_date,
                   repeat_type,
                   repeat_interval,
                   parent_todo_id,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`
	batch := &pgx.Batch{}
	for _, instance := range instances {
		batch.Queue(
			insertInstanceQuery,
			instance.UserID,
			instance.Title,
			instance.Description,
			instance.Priority,
			instance.Category,
			instance.Completed,
			instance.DueDate,
			instance.RepeatType,
			1,
			instance.ParentTodoID,
			now,
			now,
		)
	}

	err := s.pgPool.SendBatch(ctx, batch).Close()
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("todo_id", parent.ID).
			Int("count", len(instances)).
			Msg("failed to insert recurrence instances")
		return
	}

	s.logger.Info().
		Str("todo_id", parent.ID).
		Int("count", len(instances)).
		Msg("generated recurrence instances")
}

func (s *todoServiceImpl) GetTodosByUserID(ctx context.Context, userID string) ([]*models.Todo, error) {
	// A database without the position column can neither select nor
	// order by it.
	positionColumn := "0 AS position,"
	orderBy := "ORDER BY CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END DESC, created_at DESC"
	if s.hasPosition {
		positionColumn = "position,"
		orderBy = "ORDER BY CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END DESC, position, created_at DESC"
	}

	selectTodosQuery := `
SELECT id,
       title,
       description,
       priority,
       category,
       completed,
       due_date,
       ` + positionColumn + `
       repeat_type,
       repeat_interval,
       repeat_days_of_week,
       repeat_end_date,
       parent_todo_id,
       created_at,
       updated_at
FROM todos
WHERE user_id = $1
` + orderBy
	rows, err := s.pgPool.Query(
		ctx,
		selectTodosQuery,
		userID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select todos by user id")
		return nil, err
	}
	defer rows.Close()

	var todos []*models.Todo
	for rows.Next() {
		todo := &models.Todo{UserID: userID}
		err = rows.Scan(
			&todo.ID,
			&todo.Title,
			&todo.Description,
			&todo.Priority,
			&todo.Category,
			&todo.Completed,
			&todo.DueDate,
			&todo.Position,
			&todo.RepeatType,
			&todo.RepeatInterval,
			&todo.RepeatDaysOfWeek,
			&todo.RepeatEndDate,
			&todo.ParentTodoID,
			&todo.CreatedAt,
			&todo.UpdatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan todo")
			return nil, err
		}
		todos = append(todos, todo)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(todos)).
		Str("user_id", userID).
		Msg("selected todos by user id")

	return todos, nil
}

func (s *todoServiceImpl) UpdateTodo(ctx context.Context, params UpdateTodoParams) (*models.Todo, error) {
	if !models.IsValidPriority(params.Priority) {
		return nil, ErrInvalidPriority
	}
	repeatType := params.RepeatType
	if repeatType == "" {
		repeatType = models.RepeatNone
	}
	if !models.IsValidRepeatType(repeatType) {
		return nil, ErrInvalidRepeatType
	}

	now := time.Now()
	todo := &models.Todo{
		ID:               params.ID,
		UserID:           params.UserID,
		Title:            params.Title,
		Description:      params.Description,
		Priority:         params.Priority,
		Category:         params.Category,
		Completed:        params.Completed,
		DueDate:          params.DueDate,
		RepeatType:       repeatType,
		RepeatInterval:   params.RepeatInterval,
		RepeatDaysOfWeek: params.RepeatDaysOfWeek,
		RepeatEndDate:    params.RepeatEndDate,
		UpdatedAt:        now,
	}
	if todo.RepeatInterval < 1 {
		todo.RepeatInterval = 1
	}
	if todo.RepeatType != models.RepeatNone && todo.RepeatEndDate == nil {
		end := recurrence.DefaultEndDate(now)
		todo.RepeatEndDate = &end
	}

	positionColumn := "0 AS position"
	if s.hasPosition {
		positionColumn = "position"
	}

	updateTodoQuery := `
UPDATE todos
SET title = $1,
    description = $2,
    priority = $3,
    category = $4,
    completed = $5,
    due_date = $6,
    repeat_type = $7,
    repeat_interval = $8,
    repeat_days_of_week = $9,
    repeat_end_date = $10,
    updated_at = $11
WHERE id = $12 AND user_id = $13
RETURNING ` + positionColumn + `, parent_todo_id, created_at
`
	err := s.pgPool.QueryRow(
		ctx,
		updateTodoQuery,
		todo.Title,
		todo.Description,
		todo.Priority,
		todo.Category,
		todo.Completed,
		todo.DueDate,
		todo.RepeatType,
		todo.RepeatInterval,
		todo.RepeatDaysOfWeek,
		todo.RepeatEndDate,
		todo.UpdatedAt,
		todo.ID,
		todo.UserID,
	).Scan(
		&todo.Position,
		&todo.ParentTodoID,
		&todo.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Error().
				Str("todo_id", todo.ID).
				Str("user_id", todo.UserID).
				Msg("todo not found")
			return nil, ErrTodoNotFound
		}

		s.logger.Error().
			Err(err).
			Str("todo_id", todo.ID).
			Msg("failed to update todo")
		return nil, err
	}
	s.logger.Debug().
		Str("todo_id", todo.ID).
		Msg("updated todo")

	if todo.RepeatType != models.RepeatNone {
		s.expandRecurrence(ctx, todo, now)
	}

	s.logger.Info().
		Str("todo_id", todo.ID).
		Str("user_id", todo.UserID).
		Msg("updated todo")
	return todo, nil
}

func (s *todoServiceImpl) SetTodoCompleted(ctx context.Context, params SetTodoCompletedParams) (*models.Todo, error) {
	todo := &models.Todo{
		ID:        params.ID,
		UserID:    params.UserID,
		Completed: params.Completed,
		UpdatedAt: time.Now(),
	}

	positionColumn := "0 AS position"
	if s.hasPosition {
		positionColumn = "position"
	}

	updateTodoCompletedQuery := `
UPDATE todos
SET completed = $1,
    updated_at = $2
WHERE id = $3 AND user_id = $4
RETURNING title,
          description,
          priority,
          category,
          due_date,
          ` + positionColumn + `,
          repeat_type,
          repeat_interval,
          repeat_days_of_week,
          repeat_end_date,
          parent_todo_id,
          created_at
`
	err := s.pgPool.QueryRow(
		ctx,
		updateTodoCompletedQuery,
		todo.Completed,
		todo.UpdatedAt,
		todo.ID,
		todo.UserID,
	).Scan(
		&todo.Title,
		&todo.Description,
		&todo.Priority,
		&todo.Category,
		&todo.DueDate,
		&todo.Position,
		&todo.RepeatType,
		&todo.RepeatInterval,
		&todo.RepeatDaysOfWeek,
		&todo.RepeatEndDate,
		&todo.ParentTodoID,
		&todo.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Error().
				Str("todo_id", todo.ID).
				Str("user_id", todo.UserID).
				Msg("todo not found")
			return nil, ErrTodoNotFound
		}

		s.logger.Error().
			Err(err).
			Str("todo_id", todo.ID).
			Msg("failed to update todo completion")
		return nil, err
	}

	s.logger.Info().
		Str("todo_id", todo.ID).
		Bool("completed", todo.Completed).
		Msg("updated todo completion")
	return todo, nil
}

func (s *todoServiceImpl) ReorderTodos(ctx context.Context, userID string, orderedIDs []string) error {
	if !s.hasPosition {
		s.logger.Warn().
			Str("user_id", userID).
			Msg("position column not available, skipping reorder persistence")
		return nil
	}
	if len(orderedIDs) == 0 {
		return nil
	}

	// Positions are scoped per priority tier: group the incoming
	// order by each todo's stored priority, then number within the
	// group.
	const selectPrioritiesQuery = `
SELECT id, priority
FROM todos
WHERE user_id = $1 AND id = ANY($2)
`
	rows, err := s.pgPool.Query(
		ctx,
		selectPrioritiesQuery,
		userID,
		orderedIDs,
	)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select todo priorities, keeping client order unpersisted")
		return nil
	}
	defer rows.Close()

	priorities := make(map[string]string, len(orderedIDs))
	for rows.Next() {
		var id, priority string
		if err = rows.Scan(&id, &priority); err != nil {
			s.logger.Warn().
				Err(err).
				Msg("failed to scan todo priority, keeping client order unpersisted")
			return nil
		}
		priorities[id] = priority
	}
	if err = rows.Err(); err != nil {
		s.logger.Warn().
			Err(err).
			Msg("failed to iterate over rows, keeping client order unpersisted")
		return nil
	}

	const updatePositionQuery = `
UPDATE todos
SET position = $1
WHERE id = $2 AND user_id = $3
`
	batch := &pgx.Batch{}
	nextInTier := make(map[string]int, 3)
	for _, id := range orderedIDs {
		priority, ok := priorities[id]
		if !ok {
			// Unknown or foreign id: skip rather than fail the
			// whole reorder.
			continue
		}
		nextInTier[priority]++
		batch.Queue(updatePositionQuery, nextInTier[priority], id, userID)
	}
	if batch.Len() == 0 {
		return nil
	}

	err = s.pgPool.SendBatch(ctx, batch).Close()
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("user_id", userID).
			Msg("failed to persist todo order, client keeps its optimistic order")
		return nil
	}

	s.logger.Info().
		Str("user_id", userID).
		Int("count", batch.Len()).
		Msg("reordered todos")
	return nil
}

func (s *todoServiceImpl) DeleteTodo(ctx context.Context, id, userID string) error {
	const deleteTodoQuery = `
DELETE FROM todos
WHERE id = $1 AND user_id = $2
`
	tag, err := s.pgPool.Exec(
		ctx,
		deleteTodoQuery,
		id,
		userID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("todo_id", id).
			Msg("failed to delete todo")
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Error().
			Str("todo_id", id).
			Str("user_id", userID).
			Msg("todo not found")
		return ErrTodoNotFound
	}

	s.logger.Info().
		Str("todo_id", id).
		Str("user_id", userID).
		Msg("deleted todo")
	return nil
}
