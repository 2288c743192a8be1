// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package db

import (
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/guregu/dynamo"
)

type DynamoDBDatabase struct {
	svc        *dynamodb.DynamoDB
	db         *dynamo.DB
	stepsTable dynamo.Table
}

func NewDynamoDBDatabase(session *session.Session, stage string) (*DynamoDBDatabase, error) {
	ddb := &DynamoDBDatabase{svc: dynamodb.New(session)}
	ddb.db = dynamo.NewFromIface(ddb.svc)
	ddb.stepsTable = ddb.db.Table("rigid2d-" + stage + "-steps")
	return ddb, nil
}

func (ddb *DynamoDBDatabase) PutStep(step Step) error {
	return ddb.stepsTable.Put(step).Run()
}

func (ddb *DynamoDBDatabase) ReadStepsByServer(server string) (steps []Step, err error) {
	return readSteps(ddb.stepsTable.Get("server", server).Iter())
}

func readSteps(query dynamo.Iter) (steps []Step, err error) {
	for {
		var step Step
		if !query.Next(&step) {
			err = query.Err()
			return
		}
		steps = append(steps, step)
	}
}
