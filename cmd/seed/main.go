package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mbet-dev/mbet-adera-backend/internal/config"
	"github.com/mbet-dev/mbet-adera-backend/internal/db"
	"github.com/mbet-dev/mbet-adera-backend/internal/model"
	"github.com/mbet-dev/mbet-adera-backend/internal/trackcode"
	"gorm.io/gorm"
)

type seedParcel struct {
	Pickup      string
	Dropoff     string
	Size        model.ParcelSize
	Status      model.ParcelStatus
	Description string
	Method      model.PaymentMethod
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := gdb.AutoMigrate(&model.Address{}, &model.Parcel{}, &model.Transaction{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.EnsureViews(gdb); err != nil {
		return fmt.Errorf("ensure views: %w", err)
	}

	canSeed, err := shouldSeed(ctx, gdb)
	if err != nil {
		return err
	}
	if !canSeed {
		log.Printf("parcels already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	senderUID := envOr("SEED_SENDER_UID", "demo-sender")
	receiverUID := envOr("SEED_RECEIVER_UID", "demo-receiver")

	parcels := buildSeedParcels()

	err = gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, tbl := range []string{"transactions", "parcels", "addresses"} {
			if err := tx.Exec("DELETE FROM " + tbl).Error; err != nil {
				return fmt.Errorf("clear %s: %w", tbl, err)
			}
		}
		for _, sp := range parcels {
			if err := insertParcel(tx, senderUID, receiverUID, sp); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("seeded %d parcels for %s", len(parcels), senderUID)
	return nil
}

func shouldSeed(ctx context.Context, gdb *gorm.DB) (bool, error) {
	if strings.EqualFold(os.Getenv("FORCE_SEED"), "true") {
		return true, nil
	}
	var cnt int64
	if err := gdb.WithContext(ctx).Model(&model.Parcel{}).Count(&cnt).Error; err != nil {
		return false, fmt.Errorf("count parcels: %w", err)
	}
	return cnt == 0, nil
}

func insertParcel(tx *gorm.DB, senderUID, receiverUID string, sp seedParcel) error {
	pickup := &model.Address{
		ID:       uuid.NewString(),
		OwnerUID: senderUID,
		Line:     sp.Pickup,
		City:     "Addis Ababa",
	}
	dropoff := &model.Address{
		ID:       uuid.NewString(),
		OwnerUID: senderUID,
		Line:     sp.Dropoff,
		City:     "Addis Ababa",
	}
	if err := tx.Create(pickup).Error; err != nil {
		return fmt.Errorf("create pickup address: %w", err)
	}
	if err := tx.Create(dropoff).Error; err != nil {
		return fmt.Errorf("create dropoff address: %w", err)
	}

	code, err := trackcode.New()
	if err != nil {
		return fmt.Errorf("tracking code: %w", err)
	}
	p := &model.Parcel{
		ID:               uuid.NewString(),
		TrackingCode:     code,
		SenderUID:        senderUID,
		ReceiverUID:      &receiverUID,
		PickupAddressID:  pickup.ID,
		DropoffAddressID: dropoff.ID,
		Status:           sp.Status,
		Size:             sp.Size,
		Description:      sp.Description,
		FeeETB:           sp.Size.DefaultFee(),
		PaymentStatus:    model.PaymentStatusPending,
		PaymentMethod:    sp.Method,
	}
	if err := tx.Create(p).Error; err != nil {
		return fmt.Errorf("create parcel: %w", err)
	}

	t := &model.Transaction{
		ID:            uuid.NewString(),
		ParcelID:      p.ID,
		AmountETB:     p.FeeETB,
		Status:        model.TransactionStatusPending,
		PaymentMethod: p.PaymentMethod,
	}
	if err := tx.Create(t).Error; err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func buildSeedParcels() []seedParcel {
	return []seedParcel{
		{"Bole Road", "Piassa", model.ParcelSizeMedium, model.ParcelStatusPending, "birthday gift", model.PaymentMethodWallet},
		{"Merkato", "Bole Medhanialem", model.ParcelSizeSmall, model.ParcelStatusConfirmed, "phone accessories", model.PaymentMethodTeleBirr},
		{"Kazanchis", "CMC", model.ParcelSizeDocument, model.ParcelStatusPickedUp, "signed contract", model.PaymentMethodCash},
		{"Megenagna", "Summit", model.ParcelSizeLarge, model.ParcelStatusInTransit, "household goods", model.PaymentMethodYenePay},
		{"Piassa", "Gerji", model.ParcelSizeSmall, model.ParcelStatusDelivered, "spare parts", model.PaymentMethodWallet},
		{"Sarbet", "Lebu", model.ParcelSizeMedium, model.ParcelStatusCancelled, "clothes", model.PaymentMethodCash},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
