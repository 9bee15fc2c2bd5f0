package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"listing-service/internal"
	token_adapter "listing-service/internal/adapters/jwt"
	"listing-service/internal/configs"
	"listing-service/internal/constants"
	"listing-service/internal/core/domain"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "listing-service",
		Short:         "Property listing service",
		Long:          `REST API for property listings with an optional RabbitMQ import queue and event stream.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(), newEMICmd(), newTokenCmd())
	return root
}

// serve - основной режим: HTTP-сервер, слушатель импорта и планировщик
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, import listener and expiry sweeper",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := internal.NewApp()
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return application.Run()
		},
	}
}

func newEMICmd() *cobra.Command {
	var principal, rate, years float64

	cmd := &cobra.Command{
		Use:   "emi",
		Short: "Calculate the monthly loan payment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if principal <= 0 || years <= 0 || rate < 0 {
				return errors.New("principal and years must be positive, rate must not be negative")
			}

			b := domain.CalculateEMIBreakdown(principal, rate, years)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Monthly payment: %.0f\n", b.MonthlyPayment)
			fmt.Fprintf(out, "Months:          %d\n", b.Months)
			fmt.Fprintf(out, "Total payment:   %.0f\n", b.TotalPayment)
			fmt.Fprintf(out, "Total interest:  %.0f\n", b.TotalInterest)
			return nil
		},
	}

	cmd.Flags().Float64Var(&principal, "principal", 0, "Loan amount")
	cmd.Flags().Float64Var(&rate, "rate", 0, "Annual interest rate, percent")
	cmd.Flags().Float64Var(&years, "years", 0, "Loan term in years")
	_ = cmd.MarkFlagRequired("principal")
	_ = cmd.MarkFlagRequired("rate")
	_ = cmd.MarkFlagRequired("years")
	return cmd
}

// token выпускает dev-токен тем же ключом, которым сервер проверяет запросы
func newTokenCmd() *cobra.Command {
	var userID, email, role, envFile string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(userID) == "" {
				return errors.New("--user-id must not be empty")
			}

			var (
				cfg *configs.AppConfig
				err error
			)
			if envFile != "" {
				cfg, err = configs.LoadConfig(envFile)
			} else {
				cfg, err = configs.LoadConfig()
			}
			if err != nil {
				return err
			}

			tokens, err := token_adapter.NewTokenService(cfg.Auth.JWTSigningKey)
			if err != nil {
				return err
			}

			token, err := tokens.GenerateToken(context.Background(), domain.Claims{
				UserID: userID,
				Email:  email,
				Role:   role,
			}, constants.DevTokenTTL)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "Owner id to put into the token")
	cmd.Flags().StringVar(&email, "email", "", "Owner email")
	cmd.Flags().StringVar(&role, "role", constants.RoleOwner, "Role claim (owner or operator)")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}
