package webserver

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stake-plus/dao-govern/src/data"
)

// NonceStore holds one-time login challenges. The service backs it with
// redis; tests use an in-memory fake.
type NonceStore interface {
	Set(ctx context.Context, addr, nonce string) error
	Get(ctx context.Context, addr string) (string, error)
	Del(ctx context.Context, addr string)
	Confirm(ctx context.Context, addr string) error
}

type Auth struct {
	nonces    NonceStore
	jwtSecret []byte
	isOwner   func(addr string) bool
}

func NewAuth(nonces NonceStore, secret []byte, isOwner func(string) bool) Auth {
	return Auth{nonces: nonces, jwtSecret: secret, isOwner: isOwner}
}

func randomHex32() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(b), nil
}

func (a Auth) Challenge(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required,min=32,max=128"`
		Method  string `json:"method"  binding:"required,oneof=wallet airgap"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	log.Printf("Auth challenge for %s from IP %s using %s", req.Address, c.ClientIP(), req.Method)

	var nonce string
	var err error
	switch req.Method {
	case "wallet":
		// Wallets expect raw hex data for signRaw
		nonce, err = randomHex32()
	default:
		// Air-gap remark is human readable
		nonce = uuid.NewString()
	}

	if err != nil {
		log.Printf("Failed to create nonce: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to create challenge"})
		return
	}

	if err := a.nonces.Set(c, req.Address, nonce); err != nil {
		log.Printf("Failed to set nonce for %s: %v", req.Address, err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to create challenge"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"nonce": nonce})
}

// Confirm marks an air-gap challenge as verified. Owner-only: the
// administrator drives this after checking the on-chain remark out of band.
func (a Auth) Confirm(c *gin.Context) {
	if !a.isOwner(c.GetString("addr")) {
		c.JSON(http.StatusForbidden, gin.H{"err": "owner only"})
		return
	}
	var req struct {
		Address string `json:"address" binding:"required,min=32,max=128"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if err := a.nonces.Confirm(c, req.Address); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "challenge expired or not found"})
		return
	}
	log.Printf("Air-gap challenge confirmed for %s", req.Address)
	c.JSON(http.StatusOK, gin.H{"confirmed": true})
}

func (a Auth) Verify(c *gin.Context) {
	var req struct {
		Address   string `json:"address"   binding:"required"`
		Method    string `json:"method"    binding:"required,oneof=wallet airgap"`
		Signature string `json:"signature"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	nonce, err := a.nonces.Get(c, req.Address)
	if err != nil {
		log.Printf("Failed to get nonce for %s: %v", req.Address, err)
		c.JSON(http.StatusUnauthorized, gin.H{"err": "challenge expired or not found"})
		return
	}

	switch req.Method {
	case "airgap":
		if nonce != data.AirgapConfirmed {
			c.JSON(http.StatusUnauthorized, gin.H{"err": "remark not confirmed"})
			return
		}
		a.nonces.Del(c, req.Address)
	default:
		if err := verifySignature(req.Address, req.Signature, nonce); err != nil {
			log.Printf("Signature verification failed for %s: %v", req.Address, err)
			c.JSON(http.StatusUnauthorized, gin.H{"err": "bad signature"})
			return
		}
		a.nonces.Del(c, req.Address)
	}

	token, err := issueJWT(req.Address, a.jwtSecret)
	if err != nil {
		log.Printf("Failed to issue JWT for %s: %v", req.Address, err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	log.Printf("Successfully authenticated %s", req.Address)
	c.JSON(http.StatusOK, gin.H{"token": token})
}
