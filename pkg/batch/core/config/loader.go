package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Yognotiano/TESIS/pkg/batch/support/util/exception"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

const moduleName = "config"

// LoadConfig builds the configuration in layers:
// defaults from NewConfig, the embedded YAML, an optional YAML file,
// then environment variables (after loading the .env file) named after the yaml tags,
// e.g. THERMOLOG_INGEST_BASE_DIR.
func LoadConfig(envFilePath string, embeddedConfig EmbeddedConfig, configFile string) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Warnf(".env file (%s) not found or could not be loaded: %v", envFilePath, err)
		}
	} else if err := godotenv.Load(); err != nil {
		logger.Debugf(".env file not found or could not be loaded: %v", err)
	}

	cfg := NewConfig()

	if len(embeddedConfig) > 0 {
		var yamlConfig Config
		if err := yaml.Unmarshal(embeddedConfig, &yamlConfig); err != nil {
			return nil, exception.NewBatchError(moduleName, "failed to unmarshal embedded config", err, false, false)
		}
		mergeConfig(cfg, &yamlConfig)
	}

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, exception.NewBatchErrorf(moduleName, "failed to read config file '%s'", configFile, err)
		}
		var fileConfig Config
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, exception.NewBatchErrorf(moduleName, "failed to unmarshal config file '%s'", configFile, err)
		}
		mergeConfig(cfg, &fileConfig)
	}

	if err := loadStructFromEnv(reflect.ValueOf(cfg).Elem(), ""); err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to load config from environment variables", err, false, false)
	}
	return cfg, nil
}

// mergeConfig copies every non-zero value of source into dest.
func mergeConfig(dest, source *Config) {
	d, s := &dest.Thermolog, &source.Thermolog

	mergeString(&d.System.Timezone, s.System.Timezone)
	mergeString(&d.System.Logging.Level, s.System.Logging.Level)

	mergeString(&d.Ingest.BaseDir, s.Ingest.BaseDir)
	mergeString(&d.Ingest.SubDir, s.Ingest.SubDir)
	mergeString(&d.Ingest.DefaultInputs, s.Ingest.DefaultInputs)
	mergeString(&d.Ingest.Format, s.Ingest.Format)
	mergeString(&d.Ingest.Compression, s.Ingest.Compression)
	mergeString(&d.Ingest.MirrorRef, s.Ingest.MirrorRef)
	mergeString(&d.Ingest.ExportRef, s.Ingest.ExportRef)
	if s.Ingest.NoLock {
		d.Ingest.NoLock = true
	}
	if s.Ingest.PublishAttempts != 0 {
		d.Ingest.PublishAttempts = s.Ingest.PublishAttempts
	}
	if s.Ingest.PublishBackoffMs != 0 {
		d.Ingest.PublishBackoffMs = s.Ingest.PublishBackoffMs
	}

	if s.Histogram.Bins != 0 {
		d.Histogram.Bins = s.Histogram.Bins
	}
	if s.Histogram.Min != 0 {
		d.Histogram.Min = s.Histogram.Min
	}
	if s.Histogram.Max != 0 {
		d.Histogram.Max = s.Histogram.Max
	}

	m, sm := &d.Observability.Metrics, &s.Observability.Metrics
	mergeString(&m.Backend, sm.Backend)
	mergeString(&m.Textfile, sm.Textfile)
	mergeString(&m.Pushgateway, sm.Pushgateway)
	mergeString(&m.OTLPEndpoint, sm.OTLPEndpoint)
	mergeString(&m.OTLPProtocol, sm.OTLPProtocol)

	tr, st := &d.Observability.Tracing, &s.Observability.Tracing
	mergeString(&tr.Exporter, st.Exporter)
	mergeString(&tr.Endpoint, st.Endpoint)
	mergeString(&tr.ServiceName, st.ServiceName)
	if st.Insecure {
		tr.Insecure = true
	}

	if s.AdapterConfigs != nil {
		if d.AdapterConfigs == nil {
			d.AdapterConfigs = make(map[string]interface{})
		}
		for kind, value := range s.AdapterConfigs {
			srcSection, srcOK := value.(map[string]interface{})
			dstSection, dstOK := d.AdapterConfigs[kind].(map[string]interface{})
			if srcOK && dstOK {
				for name, conn := range srcSection {
					dstSection[name] = conn
				}
				continue
			}
			d.AdapterConfigs[kind] = value
		}
	}
}

func mergeString(dest *string, source string) {
	if source != "" {
		*dest = source
	}
}

// loadStructFromEnv recursively overrides struct fields from environment variables.
// The variable name is the upper-cased chain of yaml tags joined by "_".
func loadStructFromEnv(val reflect.Value, prefix string) error {
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		yamlTag := strings.Split(fieldType.Tag.Get("yaml"), ",")[0]
		if yamlTag == "" || yamlTag == "-" {
			continue
		}
		envVarName := strings.ToUpper(prefix + yamlTag)

		switch field.Kind() {
		case reflect.Struct:
			if err := loadStructFromEnv(field, envVarName+"_"); err != nil {
				return err
			}
			continue
		case reflect.Map, reflect.Interface, reflect.Slice:
			// Adapter maps are configured through YAML only.
			continue
		}

		envValue, exists := os.LookupEnv(envVarName)
		if !exists {
			continue
		}
		if err := setField(field, envValue); err != nil {
			return fmt.Errorf("failed to set field '%s' from env var '%s': %w", fieldType.Name, envVarName, err)
		}
	}
	return nil
}

// setField sets a string, integer, float or bool field from its string form.
func setField(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(intValue)
	case reflect.Float64, reflect.Float32:
		floatValue, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(floatValue)
	case reflect.Bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(boolValue)
	}
	return nil
}
