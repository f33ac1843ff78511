package postgresql

import (
	"testing"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayslipLines(t *testing.T) {
	var p payroll.Payslip
	require.NoError(t, decodePayslipLines(&p,
		[]byte(`[{"name":"Base","amount":"5000"},{"name":"Transport","amount":"250.50"}]`),
		[]byte(`[{"name":"Tax","amount":"420"}]`),
	))
	require.Len(t, p.Earnings, 2)
	assert.Equal(t, "Transport", p.Earnings[1].Name)
	assert.Equal(t, "250.5", p.Earnings[1].Amount.String())
	require.Len(t, p.Deductions, 1)
	assert.Equal(t, "420", p.Deductions[0].Amount.String())
}

func TestDecodePayslipLines_CorruptRow(t *testing.T) {
	p := payroll.Payslip{ID: "slip-1"}

	err := decodePayslipLines(&p, []byte(`{"name":`), []byte(`[]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "earnings of payslip slip-1")

	err = decodePayslipLines(&p, []byte(`[]`), []byte(`not json`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deductions of payslip slip-1")
}
