package log

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	sdmerrors "github.com/ecospace/sdmgo/pkg/errors"
)

// InitWarnBridge routes pkg/errors warnings into a zerolog logger writing to
// w (os.Stderr when nil). Warnings that implement zerolog.LogObjectMarshaler
// are logged with their structured fields.
func InitWarnBridge(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	logger := zerolog.New(w).With().Timestamp().Logger()
	sdmerrors.SetZerologWarnFunc(func(warning error) {
		ev := logger.Warn()
		if obj, ok := warning.(zerolog.LogObjectMarshaler); ok {
			ev.EmbedObject(obj)
		}
		ev.Msg(warning.Error())
	})
}
