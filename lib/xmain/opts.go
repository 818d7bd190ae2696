package xmain

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"oss.terrastruct.com/xos"
)

// Opts registers flags on a pflag set whose defaults fall back to environment
// variables.
type Opts struct {
	Args    []string
	Flags   *pflag.FlagSet
	environ *xos.Env

	registeredEnvs []string
}

func NewOpts(env *xos.Env, args []string) *Opts {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.Usage = func() {}
	flags.SetOutput(io.Discard)
	return &Opts{
		Args:    args,
		Flags:   flags,
		environ: env,
	}
}

// Help lists the flags followed by the environment variables they read.
func (o *Opts) Help() string {
	b := &strings.Builder{}
	o.Flags.SetOutput(b)
	o.Flags.PrintDefaults()

	if len(o.registeredEnvs) > 0 {
		b.WriteString("\nYou may persistently set the following as environment variables (flags take precedent):\n")
		b.WriteString("- $" + strings.Join(o.registeredEnvs, "\n- $"))
	}

	return b.String()
}

// env registers k for the help listing and returns its value, if any.
func (o *Opts) env(k string) (string, bool) {
	if k == "" {
		return "", false
	}
	o.registeredEnvs = append(o.registeredEnvs, k)
	v := o.environ.Getenv(k)
	return v, v != ""
}

// envDefault replaces def with the parsed value of envKey when it is set.
func envDefault[T any](o *Opts, envKey, typ string, def T, parse func(string) (T, error)) (T, error) {
	v, ok := o.env(envKey)
	if !ok {
		return def, nil
	}
	parsed, err := parse(v)
	if err != nil {
		return def, fmt.Errorf(`invalid environment variable %s. Expected %s. Found "%s".`, envKey, typ, v)
	}
	return parsed, nil
}

func (o *Opts) Int64(envKey, flag, shortFlag string, defaultVal int64, usage string) (*int64, error) {
	defaultVal, err := envDefault(o, envKey, "int64", defaultVal, func(s string) (int64, error) {
		return strconv.ParseInt(s, 10, 64)
	})
	if err != nil {
		return nil, err
	}
	return o.Flags.Int64P(flag, shortFlag, defaultVal, usage), nil
}

func (o *Opts) Float64(envKey, flag, shortFlag string, defaultVal float64, usage string) (*float64, error) {
	defaultVal, err := envDefault(o, envKey, "float64", defaultVal, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
	if err != nil {
		return nil, err
	}
	return o.Flags.Float64P(flag, shortFlag, defaultVal, usage), nil
}

func (o *Opts) String(envKey, flag, shortFlag string, defaultVal, usage string) *string {
	if v, ok := o.env(envKey); ok {
		defaultVal = v
	}
	return o.Flags.StringP(flag, shortFlag, defaultVal, usage)
}

// Bool only accepts 0, 1, false and true from the environment.
func (o *Opts) Bool(envKey, flag, shortFlag string, defaultVal bool, usage string) (*bool, error) {
	defaultVal, err := envDefault(o, envKey, "bool", defaultVal, parseEnvBool)
	if err != nil {
		return nil, err
	}
	return o.Flags.BoolP(flag, shortFlag, defaultVal, usage), nil
}

func parseEnvBool(s string) (bool, error) {
	switch s {
	case "1", "true":
		return true, nil
	case "0", "false":
		return false, nil
	}
	return false, strconv.ErrSyntax
}
