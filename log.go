package fenris

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the structured logger every session and the server
// itself log through, grounded on moby-moby's and rclone-rclone's
// shared use of sirupsen/logrus rather than the standard library's
// log package, which mars9-ramfs gets away with only because its
// teacher-supplied *chatty* flag prints raw 9P messages and nothing
// else.
func NewLogger(level logrus.Level) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log
}
