package config

const (
	defaultConfigPath         = "~/.config/m4bind/config.toml"
	projectConfigName         = "m4bind.toml"
	defaultFFmpegBinary       = "ffmpeg"
	defaultFFprobeBinary      = "ffprobe"
	defaultAudioCodec         = "aac"
	defaultFastPathTolerance  = 0.1
	defaultSilenceThresholdDB = -35.0
	defaultSilenceDuration    = 3.0
	defaultMinimumSegmentTime = 1.0
	defaultOutputPattern      = `segment_{{printf "%04d" .Index}}.mp3`
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults. Workers and
// the workspace root are resolved during normalization.
func Default() Config {
	return Config{
		Tools: Tools{
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
		},
		Bind: Bind{
			AudioCodec:        defaultAudioCodec,
			FastPathTolerance: defaultFastPathTolerance,
		},
		Split: Split{
			SilenceThresholdDB: defaultSilenceThresholdDB,
			SilenceDuration:    defaultSilenceDuration,
			MinimumSegmentTime: defaultMinimumSegmentTime,
			OutputPattern:      defaultOutputPattern,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
