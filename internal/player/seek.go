package player

// SeekTarget converts a click at offsetX on a bar barWidth wide into a position in [0, durationMS].
func SeekTarget(offsetX, barWidth float64, durationMS int) int {
	if barWidth <= 0 || durationMS <= 0 {
		return 0
	}
	target := int(offsetX / barWidth * float64(durationMS))
	return min(max(target, 0), durationMS)
}
