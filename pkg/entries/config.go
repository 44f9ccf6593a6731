package entries

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/travigo/mvg-departures/pkg/ctdf"
	"github.com/travigo/mvg-departures/pkg/tracker"
	"gopkg.in/yaml.v3"
)

// SensorConfig is one configured station sensor as written in the sensors file
type SensorConfig struct {
	ID          string `yaml:"id" validate:"required"`
	Name        string `yaml:"name"`
	Station     string `yaml:"station" validate:"required"`
	Destination string `yaml:"destination"`

	Products         []string `yaml:"products" validate:"dive,required"`
	LeadTime         int      `yaml:"lead_time" validate:"gte=0"`
	DeparturesToShow int      `yaml:"departures_to_show" validate:"gte=0"`
}

type SensorsFile struct {
	ScanInterval time.Duration  `yaml:"scan_interval" validate:"gte=0"`
	Sensors      []SensorConfig `yaml:"sensors" validate:"required,min=1,dive"`
}

func LoadSensorsFile(path string) (*SensorsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sensors file: %w", err)
	}

	return ParseSensorsFile(data)
}

func ParseSensorsFile(data []byte) (*SensorsFile, error) {
	var sensorsFile SensorsFile
	if err := yaml.Unmarshal(data, &sensorsFile); err != nil {
		return nil, fmt.Errorf("failed to parse sensors file: %w", err)
	}

	if err := validator.New().Struct(sensorsFile); err != nil {
		return nil, fmt.Errorf("invalid sensors file: %w", err)
	}

	seen := map[string]bool{}
	for _, sensor := range sensorsFile.Sensors {
		if seen[sensor.ID] {
			return nil, fmt.Errorf("invalid sensors file: duplicate sensor id %q", sensor.ID)
		}
		seen[sensor.ID] = true
	}

	if sensorsFile.ScanInterval == 0 {
		sensorsFile.ScanInterval = tracker.DefaultRefreshRate
	}

	return &sensorsFile, nil
}

func (c SensorConfig) products() []ctdf.Product {
	return ctdf.ParseProducts(c.Products)
}
