package common

import (
	"fmt"
	"os"
	"path/filepath"

	"vault-ledger-go/internal/models"

	"gopkg.in/yaml.v2"
)

// LoadVaultSeed reads the initial vault parameters file. The seed only
// matters on first run; after that the admin surface owns the parameters.
func LoadVaultSeed(paramsFile string) (*models.VaultSeed, error) {
	var paramsPath string
	if filepath.IsAbs(paramsFile) {
		paramsPath = paramsFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		paramsPath = filepath.Join(wd, paramsFile)
	}

	data, err := os.ReadFile(paramsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", paramsFile, err)
	}

	var seed models.VaultSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", paramsFile, err)
	}

	return &seed, nil
}
