package escrow

// splitPayout returns amount*(100-feePercent)/100 truncated, and the rest.
// It splits amount by hundreds first so large amounts cannot overflow.
func splitPayout(amount int64, feePercent int) (net, fee int64) {
	keep := int64(100 - feePercent)
	q, r := amount/100, amount%100
	net = q*keep + r*keep/100
	return net, amount - net
}
