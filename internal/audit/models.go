package audit

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entry is one append-only audit record. The core only ever writes these;
// nothing in the mutation path reads them back.
type Entry struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TenantID      string    `gorm:"type:varchar(64);index;not null" json:"tenant_id"`
	Actor         string    `gorm:"type:varchar(64);not null" json:"actor"`
	Action        string    `gorm:"type:varchar(64);not null" json:"action"`
	Resource      string    `gorm:"type:varchar(128);not null" json:"resource"`
	CorrelationID string    `gorm:"type:varchar(64)" json:"correlation_id,omitempty"`
	Details       Details   `gorm:"type:jsonb" json:"details,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Details is a free-form jsonb payload.
type Details map[string]interface{}

func (d Details) Value() (driver.Value, error) {
	if d == nil {
		d = Details{}
	}
	return json.Marshal(d)
}

func (d *Details) Scan(value interface{}) error {
	if value == nil {
		*d = Details{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("unsupported details column type %T", value)
	}
}

// TableName sets the table name for Entry
func (Entry) TableName() string {
	return "audit_entries"
}
