package main

import (
	"flag"

	"github.com/sirupsen/logrus"

	"warbler/crud"
	"warbler/http"
)

// main is the app's entry point.
func main() {
	// Check if the flag "-prod" has been provided. It means that we're running in production.
	productionBool := flag.Bool("prod", false, "Provide this flag in production to ensure that a .config.json file is provided before the application starts.")
	flag.Parse()

	config := LoadConfig(*productionBool)
	if config.IsProd() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	// Open a database connection and execute migrations.
	db := NewDB(config.Database.ConnectionInfo())
	err := Open(db, config.IsProd())
	must(err)
	defer Close(db)
	err = AutoMigrate(db)
	must(err)

	// Start the crud services.
	services, err := crud.NewServices(
		db.Gorm,
		crud.WithUser(config.Pepper),
		crud.WithMessage(),
		crud.WithFollow(),
		crud.WithLike(),
	)
	must(err)

	// Set up a webserver.
	server := http.NewServer(config.IsProd(), config.SessionKey, config.CSRFKey, services)

	// Serve the app.
	logrus.WithField("port", config.Port).Info("warbler listening")
	server.Run(config.Port)
}

// must is a little helper for shortening the panic instruction.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
