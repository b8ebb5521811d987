package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Minimal page shells. The dashboard UI is rendered client-side; these
// only exist so the route guard has pages to protect.

const dashboardPage = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Staking Dashboard</title></head>
<body>
<div id="app" data-page="dashboard"></div>
<script src="/static/app.js"></script>
</body>
</html>
`

const loginPage = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Sign in</title></head>
<body>
<div id="app" data-page="login"></div>
<script src="/static/app.js"></script>
</body>
</html>
`

// Dashboard serves the dashboard page shell.
func (h *Handlers) Dashboard(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(dashboardPage))
}

// LoginPage serves the login page shell.
func (h *Handlers) LoginPage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(loginPage))
}
