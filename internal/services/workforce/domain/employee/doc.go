// Package employee models roster members: contact details, hourly rates,
// and the labor-cost arithmetic built on them.
package employee
