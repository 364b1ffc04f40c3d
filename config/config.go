// Package config parses the command line flags and the optional YAML
// config file of all commands.
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/omniscale/osmdoc/phone"
	"github.com/omniscale/osmdoc/reference"
	"github.com/omniscale/osmdoc/report"
	"github.com/omniscale/osmdoc/writer"
)

// Config is the content of the -config file. Options from the command
// line take precedence.
type Config struct {
	Input       string          `yaml:"input"`
	Output      string          `yaml:"output"`
	Pretty      bool            `yaml:"pretty"`
	Corrections string          `yaml:"corrections"`
	Proposals   string          `yaml:"proposals"`
	CacheDir    string          `yaml:"cachedir"`
	Schema      string          `yaml:"schema"`
	Httpprofile string          `yaml:"httpprofile"`
	Reference   ReferenceConfig `yaml:"reference"`
	Phone       PhoneConfig     `yaml:"phone"`
	Postgres    PostgresConfig  `yaml:"postgres"`
	Mongo       MongoConfig     `yaml:"mongo"`
}

type ReferenceConfig struct {
	URL     string        `yaml:"url"`
	Source  string        `yaml:"source"`
	Timeout time.Duration `yaml:"timeout"`
}

type PhoneConfig struct {
	Region    string   `yaml:"region"`
	Keys      []string `yaml:"keys"`
	AuditKeys []string `yaml:"audit_keys"`
	Sentinels []string `yaml:"sentinels"`
	Policy    string   `yaml:"policy"`
	Pattern   string   `yaml:"pattern"`
}

type PostgresConfig struct {
	Connection string `yaml:"connection"`
	Schema     string `yaml:"schema"`
	Table      string `yaml:"table"`
}

type MongoConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

const defaultCacheDir = "/tmp/osmdoc"

// Options of a single command run.
type Options struct {
	Command     string
	ConfigFile  string
	Httpprofile string
	Quiet       bool
	Debug       bool
	Input       string

	// audit
	Report       report.Format
	PhoneAudit   []string
	PhonePattern string

	// propose
	Proposals        string
	ReferenceURL     string
	ReferenceSource  string
	ReferenceTimeout time.Duration
	CacheDir         string
	Refresh          bool

	// audit and convert
	Output string

	// convert
	Pretty          bool
	Corrections     string
	PhoneRegion     string
	PhoneKeys       []string
	PhoneSentinels  []string
	PhonePolicy     phone.Policy
	Postgres        string
	PostgresSchema  string
	PostgresTable   string
	Mongo           string
	MongoDatabase   string
	MongoCollection string

	// validate
	Schema string
}

// Commands that read an input file.
const (
	Audit    = "audit"
	Propose  = "propose"
	Convert  = "convert"
	Validate = "validate"
)

// raw holds flag values that need conversion after parsing.
type raw struct {
	report     string
	phoneAudit string
	phoneKeys  string
	sentinels  string
	policy     string
}

func addBaseFlags(flags *flag.FlagSet, o *Options) {
	flags.StringVar(&o.ConfigFile, "config", "", "config (yaml)")
	flags.StringVar(&o.Httpprofile, "httpprofile", "", "bind address for metrics and profile server")
	flags.BoolVar(&o.Quiet, "quiet", false, "only log warnings and errors")
	flags.BoolVar(&o.Debug, "debug", false, "log debug messages")
	flags.StringVar(&o.Input, "input", "", "OSM input file (.osm, .osm.gz, .osm.bz2 or .pbf)")
}

// NewFlagSet returns the flags of cmd. Parsed values are stored in o.
func NewFlagSet(cmd string, o *Options) (*flag.FlagSet, error) {
	flags, _, err := newFlagSet(cmd, o)
	return flags, err
}

func newFlagSet(cmd string, o *Options) (*flag.FlagSet, *raw, error) {
	flags := flag.NewFlagSet(cmd, flag.ContinueOnError)
	r := &raw{}
	o.Command = cmd
	addBaseFlags(flags, o)

	switch cmd {
	case Audit:
		flags.StringVar(&r.report, "report", string(report.Text), "report format (text, yaml or json)")
		flags.StringVar(&o.Output, "output", "", "report file (default stdout)")
		flags.StringVar(&r.phoneAudit, "phone-keys", "", "comma separated phone keys to audit (default phone,fax)")
		flags.StringVar(&o.PhonePattern, "phone-pattern", "", "regular expression of well formatted phone numbers")
	case Propose:
		flags.StringVar(&o.Proposals, "proposals", "", "CSV file for the correction proposals")
		flags.StringVar(&o.ReferenceURL, "reference-url", "", "street directory with the official street names")
		flags.StringVar(&o.ReferenceSource, "reference-source", "", "name of the reference in the CSV header")
		flags.DurationVar(&o.ReferenceTimeout, "reference-timeout", 0, "timeout for the street directory request")
		flags.StringVar(&o.CacheDir, "cachedir", "", "reference cache directory")
		flags.BoolVar(&o.Refresh, "refresh", false, "fetch the reference street names even if cached")
	case Convert:
		flags.StringVar(&o.Output, "output", "", "JSON output file (default INPUT.json, - for stdout)")
		flags.BoolVar(&o.Pretty, "pretty", false, "indent JSON output")
		flags.StringVar(&o.Corrections, "corrections", "", "CSV file with approved street name corrections")
		flags.StringVar(&o.PhoneRegion, "phone-region", "", "region of phone numbers without country code")
		flags.StringVar(&r.phoneKeys, "phone-keys", "", "comma separated phone keys to normalize (default phone,fax,contact:phone)")
		flags.StringVar(&r.sentinels, "phone-sentinels", "", "comma separated values that mean no phone number (default keine)")
		flags.StringVar(&r.policy, "phone-policy", "", "unparsable phone numbers: drop, keep or abort (default drop)")
		flags.StringVar(&o.Postgres, "postgres", "", "load documents into PostgreSQL (connection string or URL)")
		flags.StringVar(&o.PostgresSchema, "postgres-schema", "", "PostgreSQL schema")
		flags.StringVar(&o.PostgresTable, "postgres-table", "", "PostgreSQL table")
		flags.StringVar(&o.Mongo, "mongo", "", "load documents into MongoDB (URI)")
		flags.StringVar(&o.MongoDatabase, "mongo-database", "", "MongoDB database")
		flags.StringVar(&o.MongoCollection, "mongo-collection", "", "MongoDB collection")
	case Validate:
		flags.StringVar(&o.Schema, "schema", "", "XML schema (e.g. API_v0.6.xsd)")
	default:
		return nil, nil, errors.Errorf("unknown command %q", cmd)
	}
	return flags, r, nil
}

// Parse parses args for cmd, merges the config file and checks the
// resulting options.
func Parse(cmd string, args []string) (*Options, error) {
	o := &Options{}
	flags, r, err := newFlagSet(cmd, o)
	if err != nil {
		return nil, err
	}
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if flags.NArg() > 0 && o.Input == "" {
		o.Input = flags.Arg(0)
	}

	conf := &Config{}
	if o.ConfigFile != "" {
		conf, err = Load(o.ConfigFile)
		if err != nil {
			return nil, err
		}
	}
	if err := o.update(conf, r); err != nil {
		return nil, err
	}
	if errs := o.check(); len(errs) > 0 {
		return nil, Errors(errs)
	}
	return o, nil
}

// Load reads the YAML config file fname.
func Load(fname string) (*Config, error) {
	b, err := os.ReadFile(fname)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	conf := &Config{}
	if err := yaml.UnmarshalStrict(b, conf); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", fname)
	}
	return conf, nil
}

// update fills all options not set on the command line from conf and the
// defaults.
func (o *Options) update(conf *Config, r *raw) error {
	orStr := func(v *string, values ...string) {
		for _, s := range values {
			if *v != "" {
				return
			}
			*v = s
		}
	}
	orList := func(v *[]string, fromFlag string, conf, def []string) {
		switch {
		case fromFlag != "":
			*v = splitList(fromFlag)
		case len(conf) > 0:
			*v = conf
		default:
			*v = def
		}
	}

	orStr(&o.Input, conf.Input)
	orStr(&o.Httpprofile, conf.Httpprofile)
	o.Pretty = o.Pretty || conf.Pretty

	switch o.Command {
	case Audit:
		f, err := report.ParseFormat(r.report)
		if err != nil {
			return err
		}
		o.Report = f
		orStr(&o.Output, conf.Output)
		orList(&o.PhoneAudit, r.phoneAudit, conf.Phone.AuditKeys, phone.DefaultAuditKeys)
		orStr(&o.PhonePattern, conf.Phone.Pattern, phone.DefaultPattern)
	case Propose:
		orStr(&o.Proposals, conf.Proposals)
		orStr(&o.ReferenceURL, conf.Reference.URL, reference.DefaultURL)
		orStr(&o.ReferenceSource, conf.Reference.Source, reference.DefaultSource)
		orStr(&o.CacheDir, conf.CacheDir, defaultCacheDir)
		if o.ReferenceTimeout == 0 {
			o.ReferenceTimeout = conf.Reference.Timeout
		}
		if o.ReferenceTimeout == 0 {
			o.ReferenceTimeout = reference.DefaultTimeout
		}
	case Convert:
		orStr(&o.Output, conf.Output)
		if o.Output == "" && o.Input != "" {
			o.Output = o.Input + ".json"
		}
		orStr(&o.Corrections, conf.Corrections)
		orStr(&o.PhoneRegion, conf.Phone.Region, phone.DefaultRegion)
		orList(&o.PhoneKeys, r.phoneKeys, conf.Phone.Keys, phone.DefaultKeys)
		orList(&o.PhoneSentinels, r.sentinels, conf.Phone.Sentinels, phone.DefaultSentinels)
		policy := r.policy
		orStr(&policy, conf.Phone.Policy, string(phone.Drop))
		p, err := phone.ParsePolicy(policy)
		if err != nil {
			return err
		}
		o.PhonePolicy = p
		orStr(&o.Postgres, conf.Postgres.Connection)
		orStr(&o.PostgresSchema, conf.Postgres.Schema, writer.DefaultSchema)
		orStr(&o.PostgresTable, conf.Postgres.Table, writer.DefaultTable)
		orStr(&o.Mongo, conf.Mongo.URI)
		orStr(&o.MongoDatabase, conf.Mongo.Database, writer.DefaultDatabase)
		orStr(&o.MongoCollection, conf.Mongo.Collection, writer.DefaultCollection)
	case Validate:
		orStr(&o.Schema, conf.Schema)
	}
	return nil
}

func (o *Options) check() []error {
	errs := []error{}
	if o.Input == "" {
		errs = append(errs, errors.New("missing -input"))
	}
	switch o.Command {
	case Propose:
		if o.Proposals == "" {
			errs = append(errs, errors.New("missing -proposals"))
		}
		if o.ReferenceTimeout < 0 {
			errs = append(errs, errors.New("-reference-timeout needs to be positive"))
		}
	case Convert:
		if len(o.PhoneKeys) == 0 {
			errs = append(errs, errors.New("empty -phone-keys"))
		}
		if o.Output == o.Input {
			errs = append(errs, errors.New("-output would overwrite -input"))
		}
	case Validate:
		if o.Schema == "" {
			errs = append(errs, errors.New("missing -schema"))
		}
	}
	return errs
}

// Errors are all problems found in the options.
type Errors []error

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("errors in config/options: %s", strings.Join(msgs, "; "))
}

func splitList(s string) []string {
	var l []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			l = append(l, v)
		}
	}
	return l
}
