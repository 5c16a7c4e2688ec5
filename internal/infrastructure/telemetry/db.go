package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/gorm"
)

// InstrumentDB registers the otelgorm plugin so every repository call emits
// a span under the active trace. Query variables are excluded from span
// attributes.
func InstrumentDB(db *gorm.DB) error {
	return db.Use(otelgorm.NewPlugin(otelgorm.WithoutQueryVariables()))
}
