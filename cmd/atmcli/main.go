// Command atmcli is a terminal cash machine: log in, pick deposit or
// withdraw, enter an amount, and watch the balance the server reports after
// each committed operation.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	mazebank "github.com/sebaswvv/MazeBank"
	"github.com/sebaswvv/MazeBank/internal/atm"
	"github.com/sebaswvv/MazeBank/internal/storage"
	"github.com/sebaswvv/MazeBank/models"
)

type config struct {
	BaseURL     string `envconfig:"MAZEBANK_URL" default:"http://localhost:8080"`
	SessionFile string `envconfig:"MAZEBANK_SESSION_FILE" default:".mazebank-session.json"`
}

func main() {
	_ = godotenv.Load()

	var cfg config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	app, err := mazebank.New(mazebank.Config{
		BaseURL: cfg.BaseURL,
		Store:   storage.NewFileStore(cfg.SessionFile),
	})
	if err != nil {
		log.Fatalf("Failed to initialise client: %v", err)
	}

	ctx := context.Background()
	in := bufio.NewReader(os.Stdin)

	if err := app.Session.RequireAuth(); err != nil {
		if err := login(ctx, app, in); err != nil {
			log.Fatalf("Login failed: %v", err)
		}
	}

	if err := app.User.FetchUser(ctx, app.Session.UserID()); err != nil {
		log.Fatalf("Failed to load user: %v", err)
	}
	if err := app.User.FetchAccounts(ctx, app.Session.UserID()); err != nil {
		log.Fatalf("Failed to load accounts: %v", err)
	}
	accountID := app.User.ActiveAccountID()
	if accountID == 0 {
		log.Fatalf("No checking account available for ATM operations")
	}

	app.ATM.SetAccountID(accountID)
	if err := app.ATM.FetchAccount(ctx); err != nil {
		log.Fatalf("Failed to load account: %v", err)
	}

	u := app.User.User()
	fmt.Printf("Welcome, %s %s.\n", u.FirstName, u.LastName)

	for {
		acc := app.ATM.Account()
		fmt.Printf("\nAccount %s  balance %.2f\n", acc.IBAN, acc.Balance)
		fmt.Print("[d]eposit, [w]ithdraw, [l]ogout, [q]uit: ")

		choice, _ := in.ReadString('\n')
		switch strings.TrimSpace(choice) {
		case "d":
			runOperation(ctx, app, in, atm.SceneDeposit)
		case "w":
			runOperation(ctx, app, in, atm.SceneWithdraw)
		case "l":
			if err := app.Session.Logout(); err != nil {
				log.Printf("Logout: %v", err)
			}
			fmt.Println("Logged out.")
			return
		case "q":
			return
		}
	}
}

func login(ctx context.Context, app *mazebank.App, in *bufio.Reader) error {
	fmt.Print("Email: ")
	email, _ := in.ReadString('\n')
	fmt.Print("Password: ")
	password, _ := in.ReadString('\n')

	return app.Session.Login(ctx, models.LoginRequest{
		Email:    strings.TrimSpace(email),
		Password: strings.TrimSpace(password),
	})
}

func runOperation(ctx context.Context, app *mazebank.App, in *bufio.Reader, scene atm.Scene) {
	if err := app.ATM.SetScene(scene); err != nil {
		log.Printf("%v", err)
		return
	}

	fmt.Print("Amount: ")
	raw, _ := in.ReadString('\n')
	amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		fmt.Println("Not a number.")
		// Back to the idle scene; the pending amount is discarded with it.
		_ = app.ATM.SetScene(atm.SceneSelect)
		return
	}
	app.ATM.SetAmount(amount)

	switch scene {
	case atm.SceneDeposit:
		err = app.ATM.Deposit(ctx, 0)
	case atm.SceneWithdraw:
		err = app.ATM.Withdraw(ctx)
	}
	if err != nil {
		// Scene is unchanged on failure; cancel back to SELECT so the menu
		// starts clean.
		fmt.Printf("Operation failed: %v\n", err)
		_ = app.ATM.SetScene(atm.SceneSelect)
	}
}
