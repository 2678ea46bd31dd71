package main

import (
	"context"

	"factoring-backend/internal/pkg"

	"github.com/sirupsen/logrus"
)

// @title Factoring Backend API
// @version 1.0
// @description Бэкенд платформы динамического дисконтирования и верификации поставок

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	logrus.Info("App start")

	app, err := pkg.NewApp(context.Background())
	if err != nil {
		logrus.Fatalf("Failed to initialize application: %v", err)
	}

	app.RunApp()
	logrus.Info("App terminated")
}
