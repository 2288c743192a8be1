// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"bytes"
	"errors"
	"fmt"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/credentials/ec2rolecreds"
	"github.com/aws/aws-sdk-go/aws/ec2metadata"
	"github.com/aws/aws-sdk-go/aws/session"
	"io"
	"io/ioutil"
	"net"
	"net/http"
	"os"
	"os/user"
	"strings"
	"time"
)

const AWSProfile = "rigid2d"

type UserData struct {
	Region string
	Stage  string
}

func getAWSSession(region string) (*session.Session, error) {
	usr, osErr := user.Current()
	if osErr != nil {
		return nil, osErr
	}
	path := fmt.Sprintf("%s/.aws/credentials", usr.HomeDir)
	var creds *credentials.Credentials
	if _, statErr := os.Stat(path); statErr == nil {
		creds = credentials.NewSharedCredentials(path, AWSProfile)
	} else {
		creds = credentials.NewCredentials(&ec2rolecreds.EC2RoleProvider{Client: ec2metadata.New(session.Must(session.NewSession(aws.NewConfig())))})
	}
	return session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: creds,
	})
}

func getPublicIP() (net.IP, error) {
	client := http.Client{Timeout: 2 * time.Second}
	resp, httpErr := client.Get("http://checkip.amazonaws.com")
	if httpErr != nil {
		return nil, httpErr
	}
	defer resp.Body.Close()
	body, readErr := ioutil.ReadAll(io.LimitReader(resp.Body, 64))
	if readErr != nil {
		return nil, readErr
	}
	ipString := strings.TrimSpace(string(body))
	ip := net.ParseIP(ipString)
	if ip == nil {
		return nil, errors.New("could not parse IP address '" + ipString + "'")
	}
	return ip, nil
}

// loadUserData reads the EC2 user data, which is lines of NAME="value".
// Flags override what is found.
func loadUserData(region, stage string) (data *UserData, err error) {
	data = &UserData{Region: region, Stage: stage}
	if region != "" && stage != "" {
		return
	}

	client := http.Client{Timeout: time.Second / 2}
	response, err := client.Get("http://169.254.169.254/latest/user-data/")
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	var buf bytes.Buffer
	if _, err = buf.ReadFrom(response.Body); err != nil {
		return nil, err
	}

	parseUserData(buf.String(), data)

	if data.Region == "" {
		return nil, errors.New("missing region")
	}
	if data.Stage == "" {
		return nil, errors.New("missing stage")
	}
	return data, nil
}

// parseUserData fills in the fields of data that are still empty.
func parseUserData(userData string, data *UserData) {
	for _, variable := range strings.Split(userData, "\n") {
		equalsIndex := strings.IndexRune(variable, '=')
		if equalsIndex == -1 {
			continue
		}
		name := strings.Trim(variable[:equalsIndex], " ")
		value := strings.Trim(variable[equalsIndex+1:], "\" ")

		switch name {
		case "REGION":
			if data.Region == "" {
				data.Region = value
			}
		case "STAGE":
			if data.Stage == "" {
				data.Stage = value
			}
		}
	}
}
