// Command vqaexample answers a single question about an image from the
// command line, without going through the HTTP API:
//
//	vqaexample -image ./photo.jpg -question "What is in this picture?"
//	vqaexample -url https://example.com/photo.jpg -question "What is in this picture?"
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/itiroinazawa/image-vqa-agent/pkg/config"
	"github.com/itiroinazawa/image-vqa-agent/pkg/ollama"
	"github.com/itiroinazawa/image-vqa-agent/pkg/services"
)

func main() {
	imagePath := flag.String("image", "", "path to an image file")
	imageURL := flag.String("url", "", "URL of an image")
	question := flag.String("question", "", "question to ask about the image")
	flag.Parse()

	if *question == "" || (*imagePath == "" && *imageURL == "") {
		fmt.Fprintln(os.Stderr, "usage: vqaexample (-image <path> | -url <url>) -question <text>")
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	client := ollama.NewClient(cfg.OllamaHost)
	modelService := services.NewModelService(client, cfg.ImageModel, cfg.TextModel, cfg.ModelCacheDir)
	imageService := services.NewImageService(cfg.TempImageDir, cfg.MaxImageAge)
	vqaService := services.NewVQAService(imageService, modelService, modelService)

	ctx := context.Background()

	path := *imagePath
	if path == "" {
		path, err = imageService.DownloadFromURL(ctx, *imageURL)
		if err != nil {
			log.WithError(err).Fatal("Failed to download image")
		}
	}

	if err := imageService.Validate(path); err != nil {
		log.WithError(err).Fatal("Invalid image file")
	}

	answer, _, err := vqaService.AnswerQuestion(ctx, path, *question)
	if err != nil {
		log.WithError(err).Fatal("Failed to answer question")
	}

	fmt.Printf("\nQuestion: %s\n", *question)
	fmt.Printf("\nAnswer: %s\n", answer)
}
