package app

import (
  "time"
  "github.com/gin-gonic/gin"
  "github.com/gofrs/uuid"
  "github.com/sirupsen/logrus"

  "github.com/charmixer/loginui/environment"
)

func RequestId() gin.HandlerFunc {
  return func(c *gin.Context) {
    // Check for incoming header, use it if exists
    requestId := c.Request.Header.Get("X-Request-Id")

    // Create request id with UUID4
    if requestId == "" {
      uuid4, _ := uuid.NewV4()
      requestId = uuid4.String()
    }

    // Expose it for use in the application
    c.Set(environment.RequestIdKey, requestId)

    // Set X-Request-Id header
    c.Writer.Header().Set("X-Request-Id", requestId)
    c.Next()
  }
}

func RequestLogger(env *environment.State, appFields logrus.Fields) gin.HandlerFunc {
  fn := func(c *gin.Context) {

    // Start timer
    start := time.Now()
    path := c.Request.URL.Path
    raw := c.Request.URL.RawQuery

    var requestId string = c.MustGet(environment.RequestIdKey).(string)
    requestLog := env.Logger.WithFields(appFields).WithFields(logrus.Fields{
      "request.id": requestId,
    })
    c.Set(environment.LogKey, requestLog)

    c.Next()

    // Stop timer
    stop := time.Now()
    latency := stop.Sub(start)

    method := c.Request.Method
    statusCode := c.Writer.Status()
    errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

    bodySize := c.Writer.Size()

    var fullpath string = path
    if raw != "" {
      fullpath = path + "?" + raw
    }

    env.Logger.WithFields(appFields).WithFields(logrus.Fields{
      "latency": latency,
      "method": method,
      "status": statusCode,
      "error": errorMessage,
      "body_size": bodySize,
      "path": fullpath,
      "request.id": requestId,
    }).Info("")
  }
  return gin.HandlerFunc(fn)
}
