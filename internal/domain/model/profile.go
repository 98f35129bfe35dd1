// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package model

// Profile is a conference registrant's profile as resolved from the
// registry. The chat identity maps one-to-one to a registrant; the
// account UID is the platform-wide login the registrant belongs to.
type Profile struct {
	Identity    string `json:"identity"`
	DisplayName string `json:"display_name"`
	AccountUID  string `json:"account_uid"`
}
