package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"

	dbconfig "github.com/Yognotiano/TESIS/pkg/batch/adapter/database/config"
	gormadapter "github.com/Yognotiano/TESIS/pkg/batch/adapter/database/gorm"
)

func TestConnectionString(t *testing.T) {
	dsn := ConnectionString(dbconfig.DatabaseConfig{
		Host: "lab-db", User: "thermo", Password: "secret", Database: "temps",
	})
	assert.Contains(t, dsn, "thermo:secret@tcp(lab-db:3306)/temps")
	assert.Contains(t, dsn, "parseTime=true")
}

func TestDialectorRegistered(t *testing.T) {
	f, err := gormadapter.GetDialectorFactory(ProviderType)
	assert.NoError(t, err)
	assert.NotNil(t, f)
}
