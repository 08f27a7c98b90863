package users

import (
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("users")
