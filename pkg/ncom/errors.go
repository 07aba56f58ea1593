/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package ncom

import (
	"fmt"
)

// ErrUnknownChannel returned when no decoder is registered for a status channel
type ErrUnknownChannel struct {
	Channel uint8
}

func (e ErrUnknownChannel) Error() string {
	return fmt.Sprintf("Unknown status channel: %d", e.Channel)
}

// ErrShortPayload returned when a status payload is not exactly 8 bytes long
type ErrShortPayload struct {
	Channel uint8
	Len     int
}

func (e ErrShortPayload) Error() string {
	return fmt.Sprintf("Wrong payload length for status channel %d: %d", e.Channel, e.Len)
}

// ErrInvalidText returned when a text field is not valid UTF-8
type ErrInvalidText struct {
	Channel uint8
	Field   string
}

func (e ErrInvalidText) Error() string {
	return fmt.Sprintf("Invalid text in status channel %d field %s", e.Channel, e.Field)
}
