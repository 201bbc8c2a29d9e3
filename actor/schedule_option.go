// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package actor

// ScheduleOption configures a scheduled message
type ScheduleOption func(*scheduleConfig)

type scheduleConfig struct {
	reference string
	sender    *PID
}

// WithReference sets the reference used to cancel the schedule.
// A random reference is used otherwise.
func WithReference(reference string) ScheduleOption {
	return func(config *scheduleConfig) {
		config.reference = reference
	}
}

// WithSender sets the sender of the scheduled message
func WithSender(sender *PID) ScheduleOption {
	return func(config *scheduleConfig) {
		config.sender = sender
	}
}

func newScheduleConfig(opts ...ScheduleOption) *scheduleConfig {
	config := new(scheduleConfig)
	for _, opt := range opts {
		opt(config)
	}
	return config
}
