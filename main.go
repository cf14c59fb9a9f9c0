package main

import (
	"github.com/pitboss/accounts/config"
	"github.com/pitboss/accounts/internal/app"
)

func main() {

	// create and initialize the app
	app, err := app.NewApp(config.CONFIG_PATH)
	if err != nil {
		panic(err)
	}

	// run the app: serve until a termination signal arrives, then shut down
	// the server and close the store.
	err = app.Run()
	if err != nil {
		panic(err)
	}
}
