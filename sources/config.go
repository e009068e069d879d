package sources

import (
	"io/ioutil"
	"regexp"

	"github.com/Velocidex/yaml/v2"
	"github.com/pkg/errors"
	"www.velocidex.com/golang/mftecmd/records"
)

var driveLetterRegex = regexp.MustCompile(`^[A-Za-z]:?$`)

// Config holds everything a run needs. It is filled from an optional
// YAML file and then from command line flags.
type Config struct {
	File   string `yaml:"file"`
	Vss    bool   `yaml:"vss"`
	Dedupe bool   `yaml:"dedupe"`

	CsvDir  string `yaml:"csv_dir"`
	CsvName string `yaml:"csv_name"`

	JsonDir  string `yaml:"json_dir"`
	JsonName string `yaml:"json_name"`

	BodyDir         string `yaml:"body_dir"`
	BodyName        string `yaml:"body_name"`
	BodyDriveLetter string `yaml:"body_drive_letter"`
	BodyLF          bool   `yaml:"body_lf"`

	FileListDir  string `yaml:"file_list_dir"`
	FileListName string `yaml:"file_list_name"`

	DateTimeFormat string `yaml:"date_time_format"`

	IncludeShortNames  bool   `yaml:"include_short_names"`
	AlwaysPopulate0x30 bool   `yaml:"always_populate_0x30"`
	TimestompRule      string `yaml:"timestomp_rule"`

	Quiet    bool   `yaml:"quiet"`
	LogLevel string `yaml:"log_level"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "LoadConfig")
	}

	result := &Config{}
	err = yaml.UnmarshalStrict(data, result)
	if err != nil {
		return nil, errors.Wrapf(err, "LoadConfig %v", path)
	}
	return result, nil
}

// HasOutput is true when at least one file producing sink is
// configured.
func (self *Config) HasOutput() bool {
	return len(self.Destinations()) > 0
}

// Destinations lists every configured output directory.
func (self *Config) Destinations() []string {
	result := []string{}
	for _, dir := range []string{self.CsvDir, self.JsonDir,
		self.BodyDir, self.FileListDir} {
		if dir != "" {
			result = append(result, dir)
		}
	}
	return result
}

func (self *Config) Validate() error {
	if self.File == "" {
		return errors.New("No input file given")
	}

	if !self.HasOutput() {
		return errors.New("At least one output directory is required")
	}

	if self.BodyDir != "" {
		if self.BodyDriveLetter == "" {
			return errors.New("A drive letter is required for bodyfile output")
		}
		if !driveLetterRegex.MatchString(self.BodyDriveLetter) {
			return errors.Errorf("Invalid drive letter %q", self.BodyDriveLetter)
		}
	}

	_, err := records.ParseTimestompRule(self.TimestompRule)
	return err
}

func (self *Config) Options() (records.Options, error) {
	options := records.GetDefaultOptions()
	rule, err := records.ParseTimestompRule(self.TimestompRule)
	if err != nil {
		return options, err
	}

	options.IncludeShortNames = self.IncludeShortNames
	options.AlwaysPopulate0x30 = self.AlwaysPopulate0x30
	options.TimestompRule = rule
	return options, nil
}
