package main

import "time"

const summaryRounding = time.Millisecond

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
