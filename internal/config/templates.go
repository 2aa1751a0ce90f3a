package config

import (
	"os"
	"path/filepath"
)

const configTemplate = `# weekly-etf-dashboard configuration

[data]
dir = "data"

[history]
lookback_days = 45

[compare]
# trailing distinct ex-dividend events used for stability/sum/slope
recent_window = 8
workers = 4

[alerts]
# alert when a distribution change (vs 1w or 1m prior ex-div) is <= this
drop_pct = -15.0

[scrape]
user_agent = "Mozilla/5.0 (Macintosh; Intel Mac OS X) weekly-etf-dashboard/1.0"
min_fetch_interval = "350ms"
timeout = "30s"
# if a run yields fewer items than this, the previous snapshot is restored
min_items = 20
manual_tickers = "data/manual_tickers.json"

[notifications]
enabled = false
level = "alerts_only"  # all, alerts_only, off

[notifications.webhook]
enabled = false
url = ""

[notifications.telegram]
enabled = false
bot_token = ""
chat_id = ""

[logging]
level = "info"
file = true
`

// writeTemplate writes a commented default config for first-time setup.
// Never overwrites an existing file.
func writeTemplate(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(configTemplate), 0644)
}
