package model

import "go.mongodb.org/mongo-driver/bson"

// Service is a cleaning offer. The collection is maintained outside this
// server and is only read here, so documents are passed through untouched.
type Service = bson.M
