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
	"encoding/json"
	"fmt"
	"math"
	"time"
)

type valueKind uint8

const (
	kindInvalid valueKind = iota
	kindFloat
	kindInt
	kindUint
	kindString
	kindBool
	kindTime
)

// Value is a decoded field. The zero Value is invalid and means
// the device reports no current value for the field.
type Value struct {
	kind valueKind
	num  float64
	i    int64
	u    uint64
	s    string
	t    time.Time
}

func Invalid() Value {
	return Value{}
}

func Float(f float64) Value {
	return Value{kind: kindFloat, num: f}
}

func Int(i int64) Value {
	return Value{kind: kindInt, i: i}
}

func Uint(u uint64) Value {
	return Value{kind: kindUint, u: u}
}

func Text(s string) Value {
	return Value{kind: kindString, s: s}
}

func Bool(b bool) Value {
	v := Value{kind: kindBool}
	if b {
		v.u = 1
	}
	return v
}

func Time(t time.Time) Value {
	return Value{kind: kindTime, t: t}
}

func (v Value) Valid() bool {
	return v.kind != kindInvalid
}

// Float returns numeric values as float64
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case kindFloat:
		return v.num, true
	case kindInt:
		return float64(v.i), true
	case kindUint:
		return float64(v.u), true
	}
	return 0, false
}

func (v Value) Int() (int64, bool) {
	switch v.kind {
	case kindInt:
		return v.i, true
	case kindUint:
		return int64(v.u), true
	}
	return 0, false
}

func (v Value) Uint() (uint64, bool) {
	switch v.kind {
	case kindUint:
		return v.u, true
	case kindInt:
		if v.i >= 0 {
			return uint64(v.i), true
		}
	}
	return 0, false
}

func (v Value) Text() (string, bool) {
	return v.s, v.kind == kindString
}

func (v Value) Bool() (bool, bool) {
	return v.u == 1, v.kind == kindBool
}

func (v Value) Time() (time.Time, bool) {
	return v.t, v.kind == kindTime
}

func (v Value) String() string {
	switch v.kind {
	case kindFloat:
		return fmt.Sprintf("%g", v.num)
	case kindInt:
		return fmt.Sprintf("%d", v.i)
	case kindUint:
		return fmt.Sprintf("%d", v.u)
	case kindString:
		return v.s
	case kindBool:
		return fmt.Sprintf("%t", v.u == 1)
	case kindTime:
		return v.t.Format(time.RFC3339Nano)
	}
	return "<invalid>"
}

// MarshalJSON encodes invalid values as null
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindFloat:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.num)
	case kindInt:
		return json.Marshal(v.i)
	case kindUint:
		return json.Marshal(v.u)
	case kindString:
		return json.Marshal(v.s)
	case kindBool:
		return json.Marshal(v.u == 1)
	case kindTime:
		return json.Marshal(v.t.UTC().Format(time.RFC3339Nano))
	}
	return []byte("null"), nil
}

// Fields maps a field name to its current value
type Fields map[string]Value

func (f Fields) Set(name string, v Value) {
	f[name] = v
}

// Get returns the value of the field, missing fields are invalid
func (f Fields) Get(name string) Value {
	return f[name]
}

// Invalidate marks a known field as having no current value.
// Unknown fields are not added.
func (f Fields) Invalidate(name string) {
	if _, ok := f[name]; ok {
		f[name] = Value{}
	}
}

func (f Fields) Float(name string) (float64, bool) {
	return f[name].Float()
}

func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
