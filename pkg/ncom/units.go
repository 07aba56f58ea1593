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

import "math"

const (
	rad2deg = 180.0 / math.Pi
	deg2rad = math.Pi / 180.0
)

// Raw unit scale factors
const (
	timeToSec       = 1e-3 // 1 ms
	fineTimeToSec   = 4e-6 // 4 us
	accToMps2       = 1e-4 // 0.1 mm/s^2
	rateToRps       = 1e-5 // 0.01 mrad/s
	velToMps        = 1e-4 // 0.1 mm/s
	angToRad        = 1e-6 // 0.001 mrad
	innFactor       = 0.1
	posAccToM       = 1e-3
	velAccToMps     = 1e-3
	angAccToRad     = 1e-5
	gyroBiasToRps   = 5e-6
	accBiasToMps2   = 1e-4
	gyroSfFactor    = 1e-6
	accSfFactor     = 1e-6
	gyroBiasAccRps  = 1e-6
	accBiasAccMps2  = 1e-5
	gyroSfAccFactor = 1e-6
	accSfAccFactor  = 1e-6
	gpsPosToM       = 1e-3
	gpsAttToRad     = 1e-4
	gpsPosAccToM    = 1e-4
	gpsAttAccToRad  = 1e-5
	diffAgeToSec    = 1e-2
	outPosToM       = 1e-3
	zvPosToM        = 1e-3
	zvPosAccToM     = 1e-4
	nsPosToM        = 1e-3
	nsPosAccToM     = 1e-4
	alignToRad      = 1e-4
	alignAccToRad   = 1e-5
	szvDelayToSec   = 1.0
	szvPeriodToSec  = 0.1
	topSpeedToMps   = 0.5
	nsDelayToSec    = 0.1
	nsPeriodToSec   = 0.02
	nsAccelToMps2   = 0.04
	nsSpeedToMps    = 0.1
	nsRadiusToM     = 0.5
	initSpeedToMps  = 0.1
	hlDelayToSec    = 1.0
	hlPeriodToSec   = 0.1
	statDelayToSec  = 1.0
	statSpeedToMps  = 0.01
	wsPosToM        = 1e-3
	wsPosAccToM     = 1e-4
	wsSfToPpm       = 0.1
	wsSfAccToPc     = 0.002
	wsDelayToSec    = 0.1
	wsNoiseToCnt    = 0.1
	undulToM        = 0.005
	dopFactor       = 0.1
	tempKOffset     = 203.15
	absZeroTempC    = -273.15
	fineAngToRad    = 1.74532925199433e-9 // 0.1 udeg
	altToM          = 1e-3
	supplyToV       = 0.1
	slipPointToM    = 1e-3
)

// WGS-84
const (
	earthEquatRadius  = 6378137.0
	earthEccentricity = 0.0818191908426
)
