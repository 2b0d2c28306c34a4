package main

import "github.com/dmlee/todoflow/internal/app"

func main() {
	app.InitDefaultLogger()
	app.MustReadEnv()
	app.MustInitApplicationLogger()

	app.MustConnectPostgres()
	defer app.DisconnectPostgres()

	app.MustMigratePostgres()
	app.MustProbeTodoCapabilities()
	app.InitOpenAI()

	app.MustListenAndServeHTTP()
}
