package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	dbconfig "github.com/Yognotiano/TESIS/pkg/batch/adapter/database/config"
	gormadapter "github.com/Yognotiano/TESIS/pkg/batch/adapter/database/gorm"
)

func TestConnectionString(t *testing.T) {
	assert.Equal(t,
		"host=lab-db port=5432 user=thermo password=secret dbname=temps sslmode=disable",
		ConnectionString(dbconfig.DatabaseConfig{Host: "lab-db", User: "thermo", Password: "secret", Database: "temps"}))

	assert.Contains(t,
		ConnectionString(dbconfig.DatabaseConfig{Host: "h", Port: 6543, Sslmode: "require"}),
		"port=6543 user= password= dbname= sslmode=require")
}

func TestDialectorRegistered(t *testing.T) {
	_, err := gormadapter.GetDialectorFactory(ProviderType)
	assert.NoError(t, err)

	_, err = gormadapter.GetDialectorFactory("oracle")
	assert.Error(t, err)
}
