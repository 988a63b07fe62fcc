package monitor

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

const pingTimeout = 2 * time.Second

// maxLogBytes bounds how much of the log file /admin/logs returns.
const maxLogBytes = 256 << 10

// RegisterHealthRoute serves GET /healthz, reporting whether the database answers.
func RegisterHealthRoute(router gin.IRoutes, db Pinger) {
	router.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// RegisterLogsRoute serves the tail of the application log file under path.
// Callers are expected to mount it behind the admin guard.
func RegisterLogsRoute(router gin.IRoutes, path, logFile string) {
	router.GET(path, func(c *gin.Context) {
		data, err := tailFile(logFile, maxLogBytes)
		if err != nil {
			c.String(http.StatusInternalServerError, "Unable to read log")
			return
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", data)
	})
}

func tailFile(name string, limit int64) ([]byte, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if size := info.Size(); size > limit {
		if _, err := f.Seek(size-limit, io.SeekStart); err != nil {
			return nil, err
		}
	}
	return io.ReadAll(f)
}
