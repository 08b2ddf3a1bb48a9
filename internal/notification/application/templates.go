package application

import "text/template"

// Correos en español, como los envía la coordinación del colegio.

var tmplLoanCreated = template.Must(template.New("loan_created").Parse(
	`Hola,

{{.UserNombre}} ha solicitado un préstamo de {{.Cantidad}} unidad(es) de "{{.ItemNombre}}" para {{.AulaNombre}}.

La solicitud queda en estado Pendiente hasta su aprobación o rechazo.

Sistema de Inventario
`))

var tmplLoanApproved = template.Must(template.New("loan_approved").Parse(
	`Hola {{.UserNombre}},

Tu préstamo de {{.Cantidad}} unidad(es) de "{{.ItemNombre}}" fue aprobado el {{.FechaPrestamo.Format "02/01/2006"}}.

Fecha estimada de devolución: {{.FechaEstimada.Format "02/01/2006"}}.

Sistema de Inventario
`))

var tmplLoanReturned = template.Must(template.New("loan_returned").Parse(
	`Hola {{.UserNombre}},

Registramos la devolución de {{.Cantidad}} unidad(es) de "{{.ItemNombre}}" el {{.FechaRetorno.Format "02/01/2006"}}.

Gracias por devolver el material a tiempo.

Sistema de Inventario
`))

var tmplLoanDeferred = template.Must(template.New("loan_deferred").Parse(
	`Hola {{.UserNombre}},

Tu préstamo de {{.Cantidad}} unidad(es) de "{{.ItemNombre}}" fue aplazado.

Nueva fecha estimada de devolución: {{.FechaEstimada.Format "02/01/2006"}}.

Sistema de Inventario
`))
