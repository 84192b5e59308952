package restjudge

import "github.com/gin-gonic/gin"

// Register registers the judge handler
type Register interface {
	Register(gin.IRouter)
}
