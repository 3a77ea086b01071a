package notify

import (
	"testing"

	dbpkg "github.com/ectroshop9/coinshop/internal/db"
	"github.com/ectroshop9/coinshop/internal/models"
)

func TestSend(t *testing.T) {
	conn, errOpen := dbpkg.Open(":memory:")
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := dbpkg.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}

	customer := models.Customer{Serial: "SERIALNOTIFY001", PIN: "1234"}
	if errCreate := conn.Create(&customer).Error; errCreate != nil {
		t.Fatalf("create customer: %v", errCreate)
	}

	Send(conn, customer.ID, "Test title", "Test message")

	var row models.Notification
	if errFind := conn.Where("customer_id = ?", customer.ID).First(&row).Error; errFind != nil {
		t.Fatalf("load notification: %v", errFind)
	}
	if row.Title != "Test title" || row.Message != "Test message" {
		t.Fatalf("unexpected notification: %+v", row)
	}
	if row.IsRead {
		t.Fatal("notifications must start unread")
	}
}
