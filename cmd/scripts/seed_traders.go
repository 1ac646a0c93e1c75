package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pnl-league/competition-backend/internal/models"
	"github.com/pnl-league/competition-backend/internal/timewindow"
	"github.com/pnl-league/competition-backend/internal/utils"
	"github.com/pnl-league/competition-backend/pkg/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Seeds the current season from a CSV of wallets. Each row is
// wallet[,name[,realizedUsdPnl]]; existing wallets are re-entered into
// the season instead of duplicated.
func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		log.Fatal("MONGODB_URI environment variable is required")
	}
	dbName := os.Getenv("MONGODB_DATABASE")
	if dbName == "" {
		dbName = "pnl-league"
	}

	if len(os.Args) < 2 {
		log.Fatal("CSV file path is required as a command line argument")
	}
	csvFilePath := os.Args[1]

	client, err := mongodb.NewClient(context.Background(), mongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(dbName)

	seeded, err := seedSeason(db, csvFilePath)
	if err != nil {
		log.Fatalf("Failed to seed season: %v", err)
	}
	log.Printf("Seeded %d traders into season %s", seeded, timewindow.DailyID(time.Now()))
}

func seedSeason(db *mongo.Database, csvFilePath string) (int, error) {
	file, err := os.Open(csvFilePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("failed to parse CSV file: %v", err)
	}

	ctx := context.Background()
	users := db.Collection("users")
	traders := db.Collection("daily_traders")
	seasonID := timewindow.DailyID(time.Now())
	now := time.Now()

	seeded := 0
	for i, record := range records {
		if len(record) == 0 || record[0] == "" || record[0] == "wallet" {
			continue
		}
		wallet := record[0]
		name := utils.DefaultName(wallet)
		if len(record) > 1 && record[1] != "" {
			name = record[1]
		}
		pnl := 0.0
		if len(record) > 2 && record[2] != "" {
			pnl, err = strconv.ParseFloat(record[2], 64)
			if err != nil {
				log.Printf("Row %d: invalid pnl %q, skipping", i+1, record[2])
				continue
			}
		}

		userID, err := upsertUser(ctx, users, wallet, name, now)
		if err != nil {
			log.Printf("Row %d: failed to upsert user: %v", i+1, err)
			continue
		}

		count, err := traders.CountDocuments(ctx, bson.M{"userId": userID, "seasonId": seasonID})
		if err != nil {
			log.Printf("Row %d: failed to check season entry: %v", i+1, err)
			continue
		}
		if count > 0 {
			continue
		}

		trader := models.Trader{
			ID:             primitive.NewObjectID(),
			UserID:         userID,
			SeasonID:       seasonID,
			IsActive:       true,
			RealizedUsdPnl: pnl,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if _, err := traders.InsertOne(ctx, trader); err != nil {
			log.Printf("Row %d: failed to insert trader: %v", i+1, err)
			continue
		}
		seeded++
	}
	return seeded, nil
}

func upsertUser(ctx context.Context, users *mongo.Collection, wallet, name string, now time.Time) (primitive.ObjectID, error) {
	normalized := utils.NormalizeWallet(wallet)

	var existing models.User
	err := users.FindOne(ctx, bson.M{"wallet": normalized}).Decode(&existing)
	if err == nil {
		return existing.ID, nil
	}
	if err != mongo.ErrNoDocuments {
		return primitive.NilObjectID, err
	}

	user := models.User{
		ID:             primitive.NewObjectID(),
		Wallet:         normalized,
		WalletOriginal: wallet,
		Name:           name,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := users.InsertOne(ctx, user); err != nil {
		return primitive.NilObjectID, err
	}
	return user.ID, nil
}
