package s3

type TestOnlyError struct{}
