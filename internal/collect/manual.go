package collect

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/guregu/null/v6"

	"weekly-etf-dashboard/internal/models"
)

type manualEntry struct {
	Ticker         string  `json:"ticker"`
	Issuer         string  `json:"issuer"`
	Name           *string `json:"name"`
	ReferenceAsset *string `json:"reference_asset"`
}

// LoadManualTickers reads the optional operator-maintained ticker file.
// A missing or unreadable file yields no discoveries; the file is an
// escape hatch, not a requirement.
func LoadManualTickers(path string) []Discovery {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var entries []manualEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil
	}

	var items []Discovery
	for _, m := range entries {
		t := strings.ToUpper(strings.TrimSpace(m.Ticker))
		if t == "" {
			continue
		}
		issuer := m.Issuer
		if issuer == "" {
			issuer = models.IssuerOther
		}
		items = append(items, Discovery{
			Ticker:         t,
			Issuer:         issuer,
			Name:           null.StringFromPtr(m.Name),
			ReferenceAsset: null.StringFromPtr(m.ReferenceAsset),
			Notes:          "Manually added",
		})
	}
	return Dedupe(items)
}
