// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package db

type Database interface {
	PutStep(step Step) error
	ReadStepsByServer(server string) (steps []Step, err error)
}
