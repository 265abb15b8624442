package config

import (
	"flag"
	"os"
	"time"

	"github.com/seqshare/seqshare/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN
//	-g string   S3 region
//	-u string   S3 access key
//	-p string   S3 secret key
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-b string   template document bucket
//	-h string   htsget base URL
//	-x int      presigned URL expiry, minutes
//
// GS/R2 credentials, the install account id and the bin-packing constants
// are configured through the JSON overlay only.
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes
//     using flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers in minutes and then converted
//     to time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-g", "-u", "-p", "-e", "-b", "-h", "-x"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.TemplateBucket, "b", config.TemplateBucket, "template document bucket")
	fs.StringVar(&config.HtsgetBaseURL, "h", config.HtsgetBaseURL, "htsget base URL")

	presignExpiry := fs.Int("x", int(config.PresignExpiry.Minutes()), "presign_expiry (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.PresignExpiry = time.Duration(*presignExpiry) * time.Minute
}
