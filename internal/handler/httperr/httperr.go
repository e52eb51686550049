// Package httperr carries the error envelope handlers attach to a request
// so the error middleware can render deferred failures consistently with
// the flat {"error": ...} bodies handlers write themselves.
package httperr

import (
	"github.com/gin-gonic/gin"
)

type Envelope struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
	Detail  any    `json:"detail,omitempty"`
}

// Abort records err on the context for logging and writes the envelope.
func Abort(c *gin.Context, status int, err error, msg string) {
	AbortWithDetail(c, status, err, msg, nil)
}

func AbortWithDetail(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("httperr.Abort: err cannot be nil")
	}

	env := Envelope{Status: status, Message: msg, Detail: detail}

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: env,
	})
	c.AbortWithStatusJSON(status, env)
}
