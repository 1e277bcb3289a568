package handler

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
)

// 決済結果・管理ログインなど最低限のHTML
var pages = template.Must(template.New("pages").Parse(`
{{define "payment_result"}}<!doctype html>
<html lang="en"><head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
{{if .Order}}<p>Order #{{.Order.ID}} ({{.Order.PaymentRef}}) total {{.Order.TotalPrice}}</p>{{end}}
<p><a href="/">Continue shopping</a></p>
</body></html>{{end}}

{{define "admin_login"}}<!doctype html>
<html lang="en"><head><meta charset="utf-8"><title>Admin login</title></head>
<body>
<h1>Admin login</h1>
{{if .Error}}<p role="alert">{{.Error}}</p>{{end}}
<form method="post" action="/admin/login">
<label>Username <input name="username" autocomplete="username"></label>
<label>Password <input name="password" type="password" autocomplete="current-password"></label>
<button type="submit">Sign in</button>
</form>
</body></html>{{end}}

{{define "admin_dashboard"}}<!doctype html>
<html lang="en"><head><meta charset="utf-8"><title>Admin</title></head>
<body>
<h1>Dashboard</h1>
<p>Signed in as {{.Admin}} · <a href="/admin/logout">Log out</a></p>
<ul>
<li>Confirmed orders: {{.Stats.TotalOrders}}</li>
<li>Revenue: {{.Stats.TotalRevenue}}</li>
<li>Products: {{.Stats.TotalProducts}}</li>
</ul>
</body></html>{{end}}
`))

func renderPage(c echo.Context, status int, name string, data interface{}) error {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
	return c.HTMLBlob(status, buf.Bytes())
}
