package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ines1102/SeriousGame-sub000/internal/config"
)

const envPrefix = "REMEDY"

// options 命令行参数，设置了的值覆盖配置文件
type options struct {
	configPath    string
	host          string
	port          int
	publicURL     string
	redisAddr     string
	redisPassword string
	redisDB       int
	natsURL       string
	catalogPath   string
	seed          uint64
}

// loadConfig 读取配置文件并叠加命令行/环境变量
// 默认路径的配置文件不存在时使用默认配置，格式错误一律报错
func (o *options) loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist) && !flags.Changed("config"):
		cfg = config.Default()
	default:
		return nil, fmt.Errorf("load config %s: %w", o.configPath, err)
	}

	if flags.Changed("host") {
		cfg.Server.Host = o.host
	}
	if flags.Changed("port") {
		cfg.Server.Port = o.port
	}
	if flags.Changed("public-url") {
		cfg.Server.PublicURL = o.publicURL
	}
	if flags.Changed("redis-addr") {
		cfg.Redis.Addr = o.redisAddr
	}
	if flags.Changed("redis-password") {
		cfg.Redis.Password = o.redisPassword
	}
	if flags.Changed("redis-db") {
		cfg.Redis.DB = o.redisDB
	}
	if flags.Changed("nats-url") {
		cfg.NATS.URL = o.natsURL
	}
	if flags.Changed("catalog") {
		cfg.Deck.CatalogPath = o.catalogPath
	}
	if flags.Changed("seed") {
		cfg.Deck.Seed = o.seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newCmd(opts *options) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:     "remedy-server",
		Short:   "WebSocket server for two-player disease/remedy card duels.",
		Args:    cobra.ExactArgs(0),
		Version: releaseVersion,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&opts.configPath, "config", "c", "configs/config.yaml", "path to YAML config (env: REMEDY_CONFIG)")
	fs.StringVarP(&opts.host, "host", "b", "0.0.0.0", "address to bind to (env: REMEDY_HOST)")
	fs.IntVarP(&opts.port, "port", "p", 3000, "port to listen on (env: REMEDY_PORT)")
	fs.StringVar(&opts.publicURL, "public-url", "", "base URL encoded in room QR codes (env: REMEDY_PUBLIC_URL)")
	fs.StringVar(&opts.redisAddr, "redis-addr", "", "redis address, empty disables mirroring (env: REMEDY_REDIS_ADDR)")
	fs.StringVar(&opts.redisPassword, "redis-password", "", "redis password (env: REMEDY_REDIS_PASSWORD)")
	fs.IntVar(&opts.redisDB, "redis-db", 0, "redis database (env: REMEDY_REDIS_DB)")
	fs.StringVar(&opts.natsURL, "nats-url", "", "nats url, empty disables room events (env: REMEDY_NATS_URL)")
	fs.StringVar(&opts.catalogPath, "catalog", "", "card catalog YAML, empty uses the built-in one (env: REMEDY_CATALOG)")
	fs.Uint64Var(&opts.seed, "seed", 0, "fixed deck seed for debugging, 0 is random (env: REMEDY_SEED)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("remedy-server v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
