package notifier

import "html/template"

const layoutStyle = `
  body { font-family: Arial, sans-serif; color: #333; }
  .container { max-width: 600px; margin: 0 auto; padding: 20px; }
  .content { background: #f9f9f9; padding: 20px; border: 1px solid #ddd; }
  .footer { background: #f0f0f0; padding: 10px; text-align: center; font-size: 12px; }
  .info { margin: 15px 0; }
  .label { font-weight: bold; }
`

var quoteTemplate = template.Must(template.New("quote").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><style>` + layoutStyle + `</style></head>
<body>
<div class="container">
  <h1>Novo Orçamento - {{.CompanyName}}</h1>
  <div class="content">
    <p>Olá <strong>{{.ClientName}}</strong>,</p>
    <p>Segue o orçamento solicitado.</p>
    <div class="info"><span class="label">Número do Orçamento:</span> {{.QuoteNumber}}</div>
    <div class="info"><span class="label">Valor Total:</span> {{.Total}}</div>
    {{if .Link}}<p><a href="{{.Link}}">Visualizar orçamento</a></p>{{end}}
  </div>
  <div class="footer"><p>Este é um email automático. Não responda este email.</p></div>
</div>
</body>
</html>`))

var saleTemplate = template.Must(template.New("sale").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><style>` + layoutStyle + `</style></head>
<body>
<div class="container">
  <h1>Venda Confirmada</h1>
  <div class="content">
    <p>Olá <strong>{{.ClientName}}</strong>,</p>
    <p>Sua venda foi confirmada com sucesso!</p>
    <div class="info"><span class="label">Número da Venda:</span> {{.SaleNumber}}</div>
    <div class="info"><span class="label">Valor:</span> {{.Total}}</div>
    <div class="info"><span class="label">Comissão do Representante:</span> {{.Commission}}</div>
    {{if .RepresentativeName}}<div class="info"><span class="label">Representante:</span> {{.RepresentativeName}}</div>{{end}}
    <p>Obrigado pela confiança!</p>
  </div>
  <div class="footer"><p>Este é um email automático. Não responda este email.</p></div>
</div>
</body>
</html>`))
