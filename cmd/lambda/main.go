package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/cfphilippson/intune-export/internal/app"
	"github.com/cfphilippson/intune-export/internal/config"
	"github.com/cfphilippson/intune-export/internal/transport/lambdatransport"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	factory := func(ctx context.Context) (lambdatransport.ExportRunner, func(), error) {
		cfg, err := config.Load("")
		if err != nil {
			return nil, nil, err
		}
		return app.BuildService(ctx, cfg, logger)
	}

	h := lambdatransport.NewHandler(factory, logger)
	lambda.Start(h.Run)
}
