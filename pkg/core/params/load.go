package params

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"telecom_subsidy/pkg/core/utils"
	"telecom_subsidy/pkg/models"
)

var validate = validator.New()

// decodeFile reads a YAML or Hjson/JSON document into out, picking the
// decoder from the file extension.
func decodeFile(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse yaml %s: %w", path, err)
		}
	case ".hjson", ".json":
		if err := utils.ParseHJSONToStruct(string(data), out); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		return models.NewUnsupported("parameter_file_format", filepath.Ext(path))
	}
	return nil
}

// LoadGlobal reads and validates a GlobalParameters file.
func LoadGlobal(path string) (*GlobalParameters, error) {
	var gp GlobalParameters
	if err := decodeFile(path, &gp); err != nil {
		return nil, err
	}
	if err := ValidateGlobal(&gp); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &gp, nil
}

// LoadCountries reads a file holding a list of CountryParameters and returns
// them keyed by ISO3 code.
func LoadCountries(path string) (map[string]*CountryParameters, error) {
	var list []CountryParameters
	if err := decodeFile(path, &list); err != nil {
		return nil, err
	}

	out := make(map[string]*CountryParameters, len(list))
	for i := range list {
		c := &list[i]
		if err := ValidateCountry(c); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if _, dup := out[c.ISO3]; dup {
			return nil, models.NewConfigError("countries", c.ISO3, "duplicate country")
		}
		out[c.ISO3] = c
	}
	return out, nil
}

// ValidateGlobal checks struct constraints and the per-class tables.
func ValidateGlobal(gp *GlobalParameters) error {
	if err := validate.Struct(gp); err != nil {
		return models.NewConfigError("global_parameters", "", err.Error())
	}
	for _, class := range []models.SettlementClass{models.Urban, models.Suburban, models.Rural} {
		if _, err := gp.Costs.SiteRental(class); err != nil {
			return err
		}
		if _, err := gp.Costs.FiberPerMetre(class); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCountry checks struct constraints and that every sharing regime
// can resolve its baseline network count, so lookups never fail mid-run.
func ValidateCountry(c *CountryParameters) error {
	if err := validate.Struct(c); err != nil {
		return models.NewConfigError("country_parameters", c.ISO3, err.Error())
	}
	for _, class := range []models.SettlementClass{models.Urban, models.Suburban, models.Rural} {
		if _, err := c.BaselineNetworks(class); err != nil {
			return err
		}
	}
	for gen, freqs := range c.Frequencies {
		for _, f := range freqs {
			if _, err := f.BandwidthMHz(); err != nil {
				return fmt.Errorf("generation %s: %w", gen, err)
			}
		}
	}
	return nil
}

// ValidateRegime checks that the network table covers a demand regime for
// every settlement class.
func (c CountryParameters) ValidateRegime(regime models.NetworksRegime) error {
	for _, class := range []models.SettlementClass{models.Urban, models.Suburban, models.Rural} {
		if _, err := c.NetworkCount(string(regime), class); err != nil {
			return err
		}
	}
	return nil
}
