package exceptions

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/getsentry/raven-go"
	"github.com/gin-gonic/gin"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("exceptions")

type ExceptionsModule struct {
	ErrorService *raven.Client `inject:""`
}

// Recover must be deferred; it reports the panic, if any, and swallows it.
func (di *ExceptionsModule) Recover() {
	if packet := packetFor(recover()); packet != nil {
		di.capture(packet, map[string]string{})
	}
}

// Report an error operators must know about without a panic involved.
func (di *ExceptionsModule) Report(err error) {
	if err == nil {
		return
	}
	log.Errorf("reporting: %v", err)
	if di.ErrorService == nil {
		return
	}
	di.ErrorService.CaptureError(err, map[string]string{"kind": fmt.Sprintf("%T", err)})
}

// Middleware recovers panics in handlers. Outside debug mode the panic is
// sent to sentry and the request aborted with 500; in debug it propagates.
func (di *ExceptionsModule) Middleware(debug bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if debug {
			c.Next()
			return
		}
		defer func() {
			rval := recover()
			if op, ok := rval.(*net.OpError); ok && (op.Err == syscall.EPIPE || strings.Contains(op.Error(), "write: broken pipe")) {
				return
			}
			packet := packetFor(rval)
			if packet == nil {
				return
			}
			log.Errorf("recovered panic on %s %s: %v", c.Request.Method, c.Request.URL.Path, rval)
			di.capture(packet, map[string]string{"path": c.FullPath()})
			c.AbortWithStatusJSON(500, gin.H{"status": "error", "message": "Internal server error"})
		}()
		c.Next()
	}
}

func (di *ExceptionsModule) capture(packet *raven.Packet, tags map[string]string) {
	if di.ErrorService == nil {
		return
	}
	di.ErrorService.Capture(packet, tags)
}

func packetFor(rval interface{}) *raven.Packet {
	switch v := rval.(type) {
	case nil:
		return nil
	case error:
		return raven.NewPacket(v.Error(), raven.NewException(v, raven.NewStacktrace(2, 3, nil)))
	default:
		str := fmt.Sprint(v)
		return raven.NewPacket(str, raven.NewException(errors.New(str), raven.NewStacktrace(2, 3, nil)))
	}
}
