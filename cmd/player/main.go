package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jamwave/player/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	host = configVar[string]{
		envKey:       "PLAYER_HOST",
		flagKey:      "host",
		defaultValue: "127.0.0.1",
	}
	port = configVar[int]{
		envKey:       "PLAYER_PORT",
		flagKey:      "port",
		defaultValue: 4900,
	}
	logLevel = configVar[string]{
		envKey:       "PLAYER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	apiBaseURL = configVar[string]{
		envKey:       "PLAYER_API_BASE_URL",
		flagKey:      "api-base-url",
		defaultValue: "http://localhost:5000/api",
	}
	relayURL = configVar[string]{
		envKey:       "PLAYER_RELAY_URL",
		flagKey:      "relay-url",
		defaultValue: "http://localhost:4900",
	}
	relayWSURL = configVar[string]{
		envKey:       "PLAYER_RELAY_WS_URL",
		flagKey:      "relay-ws-url",
		defaultValue: "ws://localhost:4900",
	}
	publicURL = configVar[string]{
		envKey:       "PLAYER_PUBLIC_URL",
		flagKey:      "public-url",
		defaultValue: "http://localhost:4900",
	}
	hostRelay = configVar[bool]{
		envKey:       "PLAYER_HOST_RELAY",
		flagKey:      "host-relay",
		defaultValue: false,
	}
	membersLimit = configVar[int]{
		envKey:       "PLAYER_MEMBERS_LIMIT",
		flagKey:      "members-limit",
		defaultValue: 9,
	}
	chatLogLimit = configVar[int]{
		envKey:       "PLAYER_CHAT_LOG_LIMIT",
		flagKey:      "chat-log-limit",
		defaultValue: 200,
	}
	crossfadeWindow = configVar[float64]{
		envKey:       "PLAYER_CROSSFADE_WINDOW",
		flagKey:      "crossfade-window",
		defaultValue: 3,
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.String(host.flagKey, host.defaultValue, "Control surface host")
	pflag.Int(port.flagKey, port.defaultValue, "Control surface port")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.String(apiBaseURL.flagKey, apiBaseURL.defaultValue, "Catalog backend base url")
	pflag.String(relayURL.flagKey, relayURL.defaultValue, "Jam relay http base url")
	pflag.String(relayWSURL.flagKey, relayWSURL.defaultValue, "Jam relay websocket base url")
	pflag.String(publicURL.flagKey, publicURL.defaultValue, "Public base url for shareable room links")
	pflag.Bool(hostRelay.flagKey, hostRelay.defaultValue, "Host the jam relay in this instance")
	pflag.Int(membersLimit.flagKey, membersLimit.defaultValue, "Maximum number of members in a jam room")
	pflag.Int(chatLogLimit.flagKey, chatLogLimit.defaultValue, "Maximum number of retained chat messages per room")
	pflag.Float64(crossfadeWindow.flagKey, crossfadeWindow.defaultValue, "Crossfade window in seconds, 0 disables")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(apiBaseURL.flagKey, apiBaseURL.envKey)
	viper.BindEnv(relayURL.flagKey, relayURL.envKey)
	viper.BindEnv(relayWSURL.flagKey, relayWSURL.envKey)
	viper.BindEnv(publicURL.flagKey, publicURL.envKey)
	viper.BindEnv(hostRelay.flagKey, hostRelay.envKey)
	viper.BindEnv(membersLimit.flagKey, membersLimit.envKey)
	viper.BindEnv(chatLogLimit.flagKey, chatLogLimit.envKey)
	viper.BindEnv(crossfadeWindow.flagKey, crossfadeWindow.envKey)
	viper.BindEnv(redisHost.flagKey, redisHost.envKey)
	viper.BindEnv(redisPort.flagKey, redisPort.envKey)
	viper.BindEnv(redisPassword.flagKey, redisPassword.envKey)

	viper.SetDefault(host.flagKey, host.defaultValue)
	viper.SetDefault(port.flagKey, port.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(apiBaseURL.flagKey, apiBaseURL.defaultValue)
	viper.SetDefault(relayURL.flagKey, relayURL.defaultValue)
	viper.SetDefault(relayWSURL.flagKey, relayWSURL.defaultValue)
	viper.SetDefault(publicURL.flagKey, publicURL.defaultValue)
	viper.SetDefault(hostRelay.flagKey, hostRelay.defaultValue)
	viper.SetDefault(membersLimit.flagKey, membersLimit.defaultValue)
	viper.SetDefault(chatLogLimit.flagKey, chatLogLimit.defaultValue)
	viper.SetDefault(crossfadeWindow.flagKey, crossfadeWindow.defaultValue)
	viper.SetDefault(redisHost.flagKey, redisHost.defaultValue)
	viper.SetDefault(redisPort.flagKey, redisPort.defaultValue)
	viper.SetDefault(redisPassword.flagKey, redisPassword.defaultValue)

	return &app.AppConfig{
		Host:            viper.GetString(host.flagKey),
		Port:            viper.GetInt(port.flagKey),
		LogLevel:        viper.GetString(logLevel.flagKey),
		APIBaseURL:      viper.GetString(apiBaseURL.flagKey),
		RelayURL:        viper.GetString(relayURL.flagKey),
		RelayWSURL:      viper.GetString(relayWSURL.flagKey),
		PublicURL:       viper.GetString(publicURL.flagKey),
		HostRelay:       viper.GetBool(hostRelay.flagKey),
		MembersLimit:    viper.GetInt(membersLimit.flagKey),
		ChatLogLimit:    viper.GetInt(chatLogLimit.flagKey),
		CrossfadeWindow: viper.GetFloat64(crossfadeWindow.flagKey),
		RedisHost:       viper.GetString(redisHost.flagKey),
		RedisPort:       viper.GetInt(redisPort.flagKey),
		RedisPassword:   viper.GetString(redisPassword.flagKey),
	}
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
