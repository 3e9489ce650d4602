package config

import (
	"errors"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/thescopedao/solana_arb_bot/utils/logger"
)

type RpcConfig struct {
	Endpoint string `mapstructure:"Endpoint"`
}

type JupiterConfig struct {
	QuoteURL           string `mapstructure:"QuoteURL"`
	SwapInstructionURL string `mapstructure:"SwapInstructionURL"`
}

type JitoConfig struct {
	BundleURL  string `mapstructure:"BundleURL"`
	TipAccount string `mapstructure:"TipAccount"`
}

type ArbConfig struct {
	InputMint       string  `mapstructure:"InputMint"`
	OutputMint      string  `mapstructure:"OutputMint"`
	Amount          uint64  `mapstructure:"Amount"`
	ProfitThreshold uint64  `mapstructure:"ProfitThreshold"`
	TipRate         float64 `mapstructure:"TipRate"`
	LoopIntervalMS  int64   `mapstructure:"LoopIntervalMS"`
	MaxAccounts     int64   `mapstructure:"MaxAccounts"`
	MaxBackoffMS    int64   `mapstructure:"MaxBackoffMS"`
	ProgramID       string  `mapstructure:"ProgramID"`
}

type WalletConfig struct {
	SecretKey string `mapstructure:"SecretKey"`
}

type RedisConfig struct {
	Host         string `mapstructure:"Host"`
	DB           int64  `mapstructure:"DB"`
	Password     string `mapstructure:"Password"`
	MinIdleConns int64  `mapstructure:"MinIdleConns"`
}

type KafkaConfig struct {
	Host     string
	Topic    string
	Protocol string
	Username string
	Password string
	CAPath   string
}

type WebConfig struct {
	Listen string `mapstructure:"Listen"`
}

// struct decode must has tag
type Config struct {
	RpcConf     RpcConfig     `mapstructure:"RpcConfig"`
	JupiterConf JupiterConfig `mapstructure:"JupiterConfig"`
	JitoConf    JitoConfig    `mapstructure:"JitoConfig"`
	ArbConf     ArbConfig     `mapstructure:"ArbConfig"`
	WalletConf  WalletConfig  `mapstructure:"WalletConfig"`
	RedisConf   RedisConfig   `mapstructure:"RedisConfig"`
	KafkaConf   KafkaConfig   `mapstructure:"KafkaConfig"`
	WebConf     WebConfig     `mapstructure:"WebConfig"`
}

var (
	configMutex = sync.RWMutex{}
	config      Config

	configViper     *viper.Viper
	configFlyChange []chan bool
)

func RegistConfChange(c chan bool) {
	configFlyChange = append(configFlyChange, c)
}

func notifyConfChange() {
	for i := 0; i < len(configFlyChange); i++ {
		configFlyChange[i] <- true
	}
}

func watchConfig(c *viper.Viper) error {
	c.WatchConfig()
	cfn := func(e fsnotify.Event) {
		logger.Logrus.WithFields(logrus.Fields{"change": e.String()}).Info("config change and reload it")
		reloadConfig(c)
		notifyConfChange()
	}

	c.OnConfigChange(cfn)
	return nil
}

func setDefaults(c *viper.Viper) {
	c.SetDefault("RpcConfig.Endpoint", "https://solana-rpc.publicnode.com")
	c.SetDefault("JupiterConfig.QuoteURL", "https://api.jup.ag/swap/v1/quote")
	c.SetDefault("JupiterConfig.SwapInstructionURL", "https://api.jup.ag/swap/v1/swap-instructions")
	c.SetDefault("JitoConfig.BundleURL", "https://frankfurt.mainnet.block-engine.jito.wtf/api/v1/bundles")
	c.SetDefault("JitoConfig.TipAccount", "Cw8CFyM9FkoMi7K7Crf6HNQqf4uEMzpKw6QNghXLvLkY")
	c.SetDefault("ArbConfig.InputMint", "So11111111111111111111111111111111111111112")
	c.SetDefault("ArbConfig.OutputMint", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	c.SetDefault("ArbConfig.Amount", 10000000)
	c.SetDefault("ArbConfig.ProfitThreshold", 3000)
	c.SetDefault("ArbConfig.TipRate", 0.5)
	c.SetDefault("ArbConfig.LoopIntervalMS", 200)
	c.SetDefault("ArbConfig.MaxAccounts", 20)
	c.SetDefault("ArbConfig.MaxBackoffMS", 0)
	c.SetDefault("ArbConfig.ProgramID", "7xNxrvV9454Eo9whXXkXdKEVoMsw2V9sEiQPkpNiYAxx")
	c.SetDefault("WebConfig.Listen", ":8080")

	c.BindEnv("RpcConfig.Endpoint", "RPC_URL")
	c.BindEnv("JupiterConfig.QuoteURL", "QUOTE_URL")
	c.BindEnv("JupiterConfig.SwapInstructionURL", "SWAP_INSTRUCTION_URL")
	c.BindEnv("JitoConfig.BundleURL", "JITO_BUNDLE_URL")
	c.BindEnv("WalletConfig.SecretKey", "SECRET_KEY")
}

func LoadConf(configFilePath string) error {
	config = Config{}
	configMutex.Lock()
	defer configMutex.Unlock()

	configViper = viper.New()
	configViper.SetConfigName("config")
	configViper.AddConfigPath(configFilePath) //endwith "/"
	configViper.SetConfigType("yaml")

	setDefaults(configViper)

	fileFound := true
	if err := configViper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
		//no config file, run on defaults and env
		fileFound = false
	}
	if err := configViper.Unmarshal(&config); err != nil {
		return err
	}

	logger.Logrus.WithFields(logrus.Fields{"ConfigFileFound": fileFound}).Info("Load config success")

	if fileFound {
		if err := watchConfig(configViper); err != nil {
			return err
		}
	}
	return nil
}

func reloadConfig(c *viper.Viper) {
	configMutex.Lock()
	defer configMutex.Unlock()

	if err := c.ReadInConfig(); err != nil {
		logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err.Error()}).Error("config ReLoad failed")
	}

	if err := configViper.Unmarshal(&config); err != nil {
		logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err.Error()}).Error("unmarshal config failed")
	}

	logger.Logrus.Info("Config ReLoad Success")
}

func GetRpcConfig() RpcConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.RpcConf
}

func GetJupiterConfig() JupiterConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.JupiterConf
}

func GetJitoConfig() JitoConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.JitoConf
}

func GetArbConfig() ArbConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.ArbConf
}

func GetWalletConfig() WalletConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.WalletConf
}

func GetRedisConfig() RedisConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.RedisConf
}

func GetKafkaConfig() KafkaConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.KafkaConf
}

func GetWebConfig() WebConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.WebConf
}
