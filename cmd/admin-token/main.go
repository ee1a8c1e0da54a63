package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"go.uber.org/fx"

	"nodeguard-platform/internal/container"
	"nodeguard-platform/internal/repositories"
	"nodeguard-platform/internal/services"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/admin-token/main.go <email>")
		fmt.Println("Example: go run cmd/admin-token/main.go admin@nodeguard.io")
		os.Exit(1)
	}

	email := os.Args[1]

	app := fx.New(
		container.Module,
		fx.Invoke(func(
			authService services.AuthenticationService,
			userRepo repositories.UserRepository,
		) {
			ctx := context.Background()

			user, err := userRepo.GetByEmail(ctx, email)
			if err != nil {
				log.Fatalf("Failed to find user '%s': %v", email, err)
			}

			token, err := authService.GenerateJWT(ctx, user)
			if err != nil {
				log.Fatalf("Failed to generate JWT token: %v", err)
			}

			fmt.Printf("JWT Token for user '%s':\n", email)
			fmt.Printf("%s\n", token)
			fmt.Printf("\nUse this token in the Authorization header:\n")
			fmt.Printf("Authorization: Bearer %s\n", token)
			fmt.Printf("\nExample curl command:\n")
			fmt.Printf("curl -H \"Authorization: Bearer %s\" http://localhost:8080/api/v1/workflows\n", token)
		}),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	app.Stop(context.Background())
}
