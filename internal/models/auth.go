package models

import "github.com/golang-jwt/jwt/v5"

// Session identifies an authenticated console user.
type Session struct {
	UID      string `json:"uid"`
	Email    string `json:"email"`
	FullName string `json:"fullName,omitempty"`
	UserType string `json:"userType"`
}

// JWTClaims carries the session inside the signed console token.
type JWTClaims struct {
	UID      string `json:"uid"`
	Email    string `json:"email"`
	FullName string `json:"fullName,omitempty"`
	UserType string `json:"userType"`
	jwt.RegisteredClaims
}
