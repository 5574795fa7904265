package middleware

import (
	"net/http"
	"sync/atomic"

	"prison-records/internal/util"

	"github.com/gin-gonic/gin"
)

// BusyMessage is returned while an import or report is already running.
const BusyMessage = "Another import or report is in progress. Please wait for it to finish."

// Busy is the shared flag behind Guard. Only one guarded request runs at a
// time; the rest are turned away rather than queued.
type Busy struct {
	running atomic.Bool
}

// TryAcquire sets the flag, reporting false if it was already set.
func (b *Busy) TryAcquire() bool {
	return b.running.CompareAndSwap(false, true)
}

func (b *Busy) Release() {
	b.running.Store(false)
}

// Guard 同一时间只允许一个导入或报表请求，其余返回 409
func (b *Busy) Guard() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !b.TryAcquire() {
			util.Abort(c, http.StatusConflict, util.CodeBusy, BusyMessage)
			return
		}
		defer b.Release()
		c.Next()
	}
}
