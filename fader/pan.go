package fader

// balanceControl is calculate_balance_control's Linear algorithm: bal is
// in [0,1] with 0.5 centered. Below center, the left channel stays at
// unity and the right channel ramps down to silence; above center the
// mirror. At bal=0.5 both channels are unity gain, matching spec §8's
// pan-law test (`balance=0.5` → `L_out=amp*in_L`, `R_out=amp*in_R`).
func balanceControl(bal float32) (l, r float32) {
	if bal <= 0.5 {
		return 1.0, bal * 2
	}
	return (1.0 - bal) * 2, 1.0
}
