package install

import "time"

// ReceiptFile is the name of the receipt written into the app directory.
const ReceiptFile = ".solution-install.yml"

// Receipt records a completed install.
type Receipt struct {
	Solution      string        `yaml:"solution"`
	Executable    string        `yaml:"executable"`
	PackagePath   string        `yaml:"package_path"`
	InstalledAt   time.Time     `yaml:"installed_at"`
	BuildDuration time.Duration `yaml:"build_duration"`
}
