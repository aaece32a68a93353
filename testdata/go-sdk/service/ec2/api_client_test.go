package ec2

type TestOnlyError struct{}
