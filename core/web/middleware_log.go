package web

import (
	"fmt"
	"math"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

func MiddleLogger(visitLogFile string, notLogged ...string) gin.HandlerFunc {

	visitLogInst := logrus.New()
	visitLogInst.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
	})
	visitLogInst.Out = &lumberjack.Logger{
		Filename:   visitLogFile,
		MaxSize:    200,
		MaxBackups: 10,
		MaxAge:     28,
		Compress:   true,
	}
	visitLogInst.SetLevel(logrus.InfoLevel)

	//skip path
	var skip map[string]struct{}

	if length := len(notLogged); length > 0 {
		skip = make(map[string]struct{}, length)

		for _, p := range notLogged {
			skip[p] = struct{}{}
		}
	}

	//visit log
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery
		if raw != "" {
			path = path + "?" + raw
		}

		start := time.Now()
		c.Next()
		stop := time.Since(start)
		latency := fmt.Sprintf("%d us", int(math.Ceil(float64(stop.Nanoseconds())/1000.0)))

		if _, ok := skip[path]; ok {
			return
		}

		visitLogInst.WithFields(logrus.Fields{
			"Status":    c.Writer.Status(),
			"ClientIP":  c.ClientIP(),
			"Latency":   latency,
			"UserAgent": c.Request.UserAgent(),
			"Method":    c.Request.Method,
			"Path":      path,
		}).Info("visit")
	}
}
